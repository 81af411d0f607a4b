package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/usecases"
)

// ListUniversitiesHandler returns the campus catalog.
func ListUniversitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		universities, err := deps.Universities.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(universities)
	}
}

// GetUniversityHandler returns a single campus.
func GetUniversityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := deps.Universities.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// NearbyListingsHandler returns approved listings near a campus or the
// caller's position, each annotated with its straight-line distance.
func NearbyListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		universityID := c.Query("university_id")
		radius := c.QueryFloat("radius", 0)
		limit := c.QueryInt("limit", 50)

		var userLoc *domain.GeoPoint
		if c.Query("lat") != "" || c.Query("lon") != "" {
			userLoc = &domain.GeoPoint{
				Lat: c.QueryFloat("lat", 0),
				Lon: c.QueryFloat("lon", 0),
			}
		}
		if universityID == "" && userLoc == nil {
			return errBadRequest(c, "university_id or lat/lon is required")
		}

		listings, ref, err := deps.Listings.FindNearby(c.Context(), universityID, userLoc, radius, limit)
		if err != nil {
			return serviceError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{
			"reference": ref,
			"listings":  listings,
		})
	}
}

type enrichRequest struct {
	UniversityID string   `json:"university_id"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Mode         string   `json:"mode"` // "driving" | "walking"
	ListingIDs   []string `json:"listing_ids"`
}

// EnrichRoutesHandler computes road routes (with straight-line fallback) from
// a reference point to a set of listings.
func EnrichRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req enrichRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.ListingIDs) == 0 {
			return errBadRequest(c, "listing_ids must not be empty")
		}
		if len(req.ListingIDs) > 20 {
			return errBadRequest(c, "at most 20 listings per request")
		}

		var userLoc *domain.GeoPoint
		if req.Lat != 0 || req.Lon != 0 {
			userLoc = &domain.GeoPoint{Lat: req.Lat, Lon: req.Lon}
		}
		ref, err := deps.Proximity.ResolveReference(c.Context(), req.UniversityID, userLoc)
		if err != nil {
			return serviceError(c, err)
		}

		mode := domain.ModeDriving
		if req.Mode == "walking" {
			mode = domain.ModeWalking
		}

		destinations := make([]usecases.Destination, 0, len(req.ListingIDs))
		for _, id := range req.ListingIDs {
			listing, err := deps.Listings.GetByID(c.Context(), id)
			if err != nil {
				// Unknown listings are skipped, not fatal.
				continue
			}
			destinations = append(destinations, usecases.Destination{ID: listing.ID, Location: listing.Location})
		}

		routes := deps.Routes.EnrichBatch(c.Context(), ref.Point, destinations, mode, 0)
		return c.JSON(fiber.Map{
			"reference": ref,
			"routes":    routes,
		})
	}
}

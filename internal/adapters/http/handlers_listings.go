package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

type listingRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Price         float64 `json:"price"`
	Surface       int     `json:"surface"`
	Rooms         int     `json:"rooms"`
	Bathrooms     int     `json:"bathrooms"`
	Type          string  `json:"type"`
	IsFurnished   bool    `json:"is_furnished"`
	HasKitchen    bool    `json:"has_kitchen"`
	HasWifi       bool    `json:"has_wifi"`
	HasParking    bool    `json:"has_parking"`
	AvailableFrom string  `json:"available_from"`
}

func (r *listingRequest) toDomain() (*domain.Listing, error) {
	var availableFrom time.Time
	if r.AvailableFrom != "" {
		t, err := time.Parse("2006-01-02", r.AvailableFrom)
		if err != nil {
			return nil, err
		}
		availableFrom = t
	}
	return &domain.Listing{
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		Location:      domain.GeoPoint{Lat: r.Lat, Lon: r.Lon},
		Price:         r.Price,
		Surface:       r.Surface,
		Rooms:         r.Rooms,
		Bathrooms:     r.Bathrooms,
		Type:          domain.ListingType(r.Type),
		IsFurnished:   r.IsFurnished,
		HasKitchen:    r.HasKitchen,
		HasWifi:       r.HasWifi,
		HasParking:    r.HasParking,
		AvailableFrom: availableFrom,
	}, nil
}

// SearchListingsHandler returns approved listings matching query filters.
func SearchListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := ports.ListingFilter{
			Type:        domain.ListingType(c.Query("type")),
			MinPrice:    c.QueryFloat("min_price", 0),
			MaxPrice:    c.QueryFloat("max_price", 0),
			MinSurface:  c.QueryInt("min_surface", 0),
			MaxSurface:  c.QueryInt("max_surface", 0),
			Rooms:       c.QueryInt("rooms", 0),
			IsFurnished: c.QueryBool("furnished", false),
			HasWifi:     c.QueryBool("wifi", false),
			HasParking:  c.QueryBool("parking", false),
			Offset:      c.QueryInt("offset", 0),
			Limit:       c.QueryInt("limit", 20),
		}
		if filter.Offset < 0 {
			filter.Offset = 0
		}

		listings, total, err := deps.Listings.Search(c.Context(), filter)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: filter.Offset, Limit: filter.Limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: listings, Pagination: pg})
	}
}

// GetListingHandler returns a single listing with photos.
func GetListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		listing, err := deps.Listings.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(listing)
	}
}

// CreateListingHandler posts a new listing for the authenticated owner.
func CreateListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req listingRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		listing, err := req.toDomain()
		if err != nil {
			return errBadRequest(c, "available_from must be YYYY-MM-DD")
		}
		listing.OwnerID = userID(c)

		if err := deps.Listings.Create(c.Context(), listing); err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(listing)
	}
}

// UpdateListingHandler applies owner edits to a listing.
func UpdateListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req listingRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		listing, err := req.toDomain()
		if err != nil {
			return errBadRequest(c, "available_from must be YYYY-MM-DD")
		}
		listing.ID = c.Params("id")

		if err := deps.Listings.Update(c.Context(), userID(c), listing); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(listing)
	}
}

// DeleteListingHandler removes a listing (owner or admin).
func DeleteListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Listings.Delete(c.Context(), userID(c), isAdmin(c), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MyListingsHandler returns the authenticated owner's listings.
func MyListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		listings, err := deps.Listings.ListByOwner(c.Context(), userID(c))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(listings)
	}
}

type photosRequest struct {
	Photos []struct {
		Path   string `json:"path"`
		IsMain bool   `json:"is_main"`
	} `json:"photos"`
}

// AddListingPhotosHandler attaches uploaded photo references.
func AddListingPhotosHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req photosRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Photos) == 0 {
			return errBadRequest(c, "photos must not be empty")
		}

		photos := make([]domain.ListingPhoto, len(req.Photos))
		for i, p := range req.Photos {
			photos[i] = domain.ListingPhoto{Path: p.Path, IsMain: p.IsMain}
		}

		if err := deps.Listings.AddPhotos(c.Context(), userID(c), c.Params("id"), photos); err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(photos)
	}
}

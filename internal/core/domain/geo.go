package domain

import "github.com/krili-app/krili/internal/pkg/geospatial"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsValid reports whether the point is usable for distance computations.
// (0,0) and out-of-range coordinates count as "unknown" and are skipped.
func (p GeoPoint) IsValid() bool {
	return geospatial.IsValid(p.Lat, p.Lon)
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point falls inside the box.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// TravelMode selects the routing profile.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
)

// ReferenceSource says where a reference point came from.
type ReferenceSource string

const (
	RefUniversity   ReferenceSource = "university"
	RefUserLocation ReferenceSource = "user_location"
)

// ReferencePoint is the fixed location proximity and routes are measured from.
// A user location is supplied per request and never persisted.
type ReferencePoint struct {
	Point  GeoPoint        `json:"point"`
	Source ReferenceSource `json:"source"`
}

// DistanceAnnotation classifies one listing against a reference point.
// Recomputed on every filter invocation, never persisted.
type DistanceAnnotation struct {
	ListingID    string  `json:"listing_id"`
	DistanceKm   float64 `json:"distance_km"` // rounded to one decimal
	WithinRadius bool    `json:"within_radius"`
}

// RouteKind tells whether a path came from the routing provider or is a
// straight-line estimate.
type RouteKind string

const (
	RouteRoad     RouteKind = "road"
	RouteStraight RouteKind = "straight"
)

// RouteResult is a travel path from a reference point to one listing.
type RouteResult struct {
	ListingID   string     `json:"listing_id"`
	Coordinates []GeoPoint `json:"coordinates"` // reference → destination polyline
	DistanceKm  float64    `json:"distance_km"`
	DurationMin int        `json:"duration_minutes"`
	Kind        RouteKind  `json:"kind"`
}

package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in kilometers between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// HaversineKm returns the distance rounded to one decimal place.
// Displayed distances use this rounding everywhere, so anything comparing
// against a radius threshold must compare the rounded value.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return Round1(Haversine(lat1, lon1, lat2, lon2))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// IsValid reports whether the pair is a usable coordinate.
//
// (0,0) is rejected even though it is a real location in the Gulf of Guinea:
// it is the usual placeholder for an unset coordinate in listing data.
// NaN and out-of-range values get the same silent-skip treatment.
func IsValid(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return true
}

// EstimateDurationMin estimates travel time in whole minutes over a distance,
// assuming 40 km/h urban driving or 5 km/h walking.
func EstimateDurationMin(distanceKm float64, walking bool) int {
	speed := 40.0
	if walking {
		speed = 5.0
	}
	return int(math.Round(distanceKm / speed * 60))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

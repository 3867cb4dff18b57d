package services

import (
	"fmt"
	"math"

	"github.com/ecoclean/backend/internal/models"
)

// GeofenceRadiusKm is the accept threshold for disposal scans. A plain
// binary cutoff: no hysteresis and no accounting for GPS accuracy radius.
const GeofenceRadiusKm = 5.0

// GeofenceError reports a rejected proximity check with the measured
// distance, rounded to two decimals for display.
type GeofenceError struct {
	DistanceKm float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("too far from the bin (%.2f km away)", e.DistanceKm)
}

// CheckProximity verifies the user is within GeofenceRadiusKm of the bin's
// registered position. Bins without a registered coordinate accept
// unconditionally.
func CheckProximity(userLat, userLng float64, bin *models.Submission) error {
	if bin.Coordinates == nil {
		return nil
	}

	dist := HaversineKm(userLat, userLng, bin.Coordinates.Lat, bin.Coordinates.Lng)
	if dist < GeofenceRadiusKm {
		return nil
	}

	return &GeofenceError{DistanceKm: math.Round(dist*100) / 100}
}

// HaversineKm computes the great-circle distance between two points in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

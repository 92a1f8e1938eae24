package proximity

import (
	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/pkg/geospatial"
)

// Distance returns the great-circle distance between a and b in meters on a
// sphere of radius geospatial.EarthRadiusMeters.
func Distance(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

package geospatial

import "math"

// boxPaddingDeg absorbs floating-point rounding at the box edges.
const boxPaddingDeg = 1e-9

// Box is a latitude/longitude rectangle in degrees. MinLon <= MaxLon always;
// areas crossing the antimeridian are represented as two boxes.
type Box struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// WorldBox covers every valid coordinate.
var WorldBox = Box{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}

// BoundingBoxes returns the boxes enclosing every point whose Haversine
// distance from (lat, lon) is at most radiusMeters.
//
// The latitude span is exact on the sphere. The longitude half-width is
// asin(sin(r)/cos(lat)), the widest meridian offset the circle reaches, so the
// boxes never exclude a point inside the circle. When the circle contains a
// pole the full longitude range is returned; when it crosses the antimeridian
// the result is split in two.
func BoundingBoxes(lat, lon, radiusMeters float64) []Box {
	angular := radiusMeters / EarthRadiusMeters
	if angular >= math.Pi {
		return []Box{WorldBox}
	}

	latDelta := toDeg(angular) + boxPaddingDeg
	minLat := lat - latDelta
	maxLat := lat + latDelta

	if minLat <= -90 || maxLat >= 90 {
		return []Box{{
			MinLat: math.Max(minLat, -90),
			MinLon: -180,
			MaxLat: math.Min(maxLat, 90),
			MaxLon: 180,
		}}
	}

	ratio := math.Sin(angular) / math.Cos(toRad(lat))
	if ratio >= 1 {
		return []Box{{MinLat: minLat, MinLon: -180, MaxLat: maxLat, MaxLon: 180}}
	}

	lonDelta := toDeg(math.Asin(ratio)) + boxPaddingDeg
	minLon := lon - lonDelta
	maxLon := lon + lonDelta

	switch {
	case maxLon-minLon >= 360:
		return []Box{{MinLat: minLat, MinLon: -180, MaxLat: maxLat, MaxLon: 180}}
	case minLon < -180:
		return []Box{
			{MinLat: minLat, MinLon: minLon + 360, MaxLat: maxLat, MaxLon: 180},
			{MinLat: minLat, MinLon: -180, MaxLat: maxLat, MaxLon: maxLon},
		}
	case maxLon > 180:
		return []Box{
			{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: 180},
			{MinLat: minLat, MinLon: -180, MaxLat: maxLat, MaxLon: maxLon - 360},
		}
	}

	return []Box{{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}}
}

// AnyContains reports whether any of the boxes contains the point.
func AnyContains(boxes []Box, lat, lon float64) bool {
	for _, b := range boxes {
		if b.Contains(lat, lon) {
			return true
		}
	}
	return false
}

package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoPoint represents a geographic coordinate (WGS 84).
//
// Query parameters and constructors use (lat, lon) order. On the wire the
// point is a GeoJSON Point whose coordinates are [lon, lat]; the swap happens
// only in Orb/FromOrb and the JSON methods below.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// NewGeoPoint builds a point from latitude and longitude in degrees.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Lat: lat, Lon: lon}
}

// Valid reports whether the coordinates are finite and within WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Orb returns the point in orb's (x=lon, y=lat) order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb point (x=lon, y=lat) into a GeoPoint.
func FromOrb(pt orb.Point) GeoPoint {
	return GeoPoint{Lat: pt.Lat(), Lon: pt.Lon()}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// MarshalJSON encodes the point as a GeoJSON Point.
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geojson.NewGeometry(p.Orb()))
}

// UnmarshalJSON decodes a GeoJSON Point.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("decode geojson point: %w", err)
	}
	geom := g.Geometry()
	if geom == nil {
		return fmt.Errorf("expected GeoJSON Point, got empty geometry")
	}
	pt, ok := geom.(orb.Point)
	if !ok {
		return fmt.Errorf("expected GeoJSON Point, got %s", geom.GeoJSONType())
	}
	*p = FromOrb(pt)
	return nil
}

// Address is the result of a reverse geocode.
type Address struct {
	DisplayName string            `json:"display_name"`
	Components  map[string]string `json:"address"`
	Formatted   string            `json:"formatted"`
}

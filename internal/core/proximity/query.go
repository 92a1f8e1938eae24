// Package proximity answers "which entities lie within R meters of this
// point" over an in-memory snapshot. It performs no I/O and holds no state.
package proximity

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// ErrInvalidQuery is returned for a non-positive radius or a centre outside
// WGS 84 ranges.
var ErrInvalidQuery = errors.New("invalid proximity query")

// Epsilon is the tolerance in meters applied to the inclusive radius check.
const Epsilon = 1e-6

// Entity is anything with a stable id, a location and an availability flag.
type Entity interface {
	EntityID() int64
	Position() domain.GeoPoint
	Available() bool
}

// Availability selects entities by their Available flag.
type Availability int

const (
	Any Availability = iota
	AvailableOnly
	UnavailableOnly
)

func (a Availability) match(e Entity) bool {
	switch a {
	case AvailableOnly:
		return e.Available()
	case UnavailableOnly:
		return !e.Available()
	}
	return true
}

func (a Availability) String() string {
	switch a {
	case AvailableOnly:
		return "available"
	case UnavailableOnly:
		return "unavailable"
	}
	return "any"
}

// Unit is the unit distances are reported in.
type Unit int

const (
	Meters Unit = iota
	Kilometers
)

func (u Unit) String() string {
	if u == Kilometers {
		return "km"
	}
	return "m"
}

// Convert expresses meters in u.
func (u Unit) Convert(meters float64) float64 {
	if u == Kilometers {
		return meters / 1000
	}
	return meters
}

// ParseUnit accepts "m", "meters", "km" and "kilometers". Empty means km.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "km", "kilometers", "kilometres":
		return Kilometers, nil
	case "m", "meters", "metres":
		return Meters, nil
	}
	return Meters, fmt.Errorf("%w: unknown unit %q", ErrInvalidQuery, s)
}

// Query describes a radius search.
type Query struct {
	Center       domain.GeoPoint
	RadiusMeters float64
	Availability Availability
	// Limit caps the number of matches; 0 means no cap.
	Limit int
	Unit  Unit
}

// Validate returns an error wrapping ErrInvalidQuery if q cannot be run.
func (q Query) Validate() error {
	if math.IsNaN(q.RadiusMeters) || math.IsInf(q.RadiusMeters, 0) || q.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be a positive number of meters, got %v", ErrInvalidQuery, q.RadiusMeters)
	}
	if !q.Center.Valid() {
		return fmt.Errorf("%w: center %s out of range", ErrInvalidQuery, q.Center)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

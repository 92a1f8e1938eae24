package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/pkg/config"
	"github.com/donamatch/donamatch/internal/pkg/geospatial"
	"github.com/donamatch/donamatch/internal/pkg/validator"
)

// NearbyNGO is an NGO annotated with its distance from the query point.
// Exactly one of the distance fields is set, depending on the requested unit.
type NearbyNGO struct {
	domain.NGO
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// NearbyDonation is a donation annotated with its distance from the query point.
type NearbyDonation struct {
	domain.Donation
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

func distanceFields(distance float64, unit proximity.Unit) (km, m *float64) {
	d := distance
	if unit == proximity.Meters {
		return nil, &d
	}
	return &d, nil
}

func nearbyNGOs(res proximity.Result[domain.NGO]) []NearbyNGO {
	out := make([]NearbyNGO, 0, res.Len())
	for _, m := range res.Matches {
		km, meters := distanceFields(m.Distance, res.Unit)
		out = append(out, NearbyNGO{NGO: m.Entity, DistanceKm: km, DistanceMeters: meters})
	}
	return out
}

func nearbyDonations(res proximity.Result[domain.Donation]) []NearbyDonation {
	out := make([]NearbyDonation, 0, res.Len())
	for _, m := range res.Matches {
		km, meters := distanceFields(m.Distance, res.Unit)
		out = append(out, NearbyDonation{Donation: m.Entity, DistanceKm: km, DistanceMeters: meters})
	}
	return out
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", c.Params("id"))
	}
	return id, nil
}

// parseBody decodes the JSON body into req and runs its validate tags.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return validator.Validate(req)
}

// queryFloat returns the first of names present in the query string.
func queryFloat(c *fiber.Ctx, names ...string) (float64, bool, error) {
	for _, name := range names {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, true, fmt.Errorf("%w: %s must be a number, got %q", proximity.ErrInvalidQuery, name, raw)
		}
		return v, true, nil
	}
	return 0, false, nil
}

// parsePoint reads lat|latitude and lng|lon|longitude.
func parsePoint(c *fiber.Ctx) (domain.GeoPoint, error) {
	lat, ok, err := queryFloat(c, "lat", "latitude")
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("%w: lat is required", proximity.ErrInvalidQuery)
	}
	lon, ok, err := queryFloat(c, "lng", "lon", "longitude")
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("%w: lng is required", proximity.ErrInvalidQuery)
	}
	return domain.NewGeoPoint(lat, lon), nil
}

// parseRadius reads radius_km, defaulting and capping it from the search config.
// Non-positive values are passed through so query validation rejects them.
func parseRadius(c *fiber.Ctx, limits config.SearchConfig) (float64, error) {
	km, ok, err := queryFloat(c, "radius_km")
	if err != nil {
		return 0, err
	}
	if !ok {
		km = limits.DefaultRadiusKm
	}
	if km > limits.MaxRadiusKm {
		return 0, fmt.Errorf("%w: radius_km must be at most %g", proximity.ErrInvalidQuery, limits.MaxRadiusKm)
	}
	return geospatial.KmToMeters(km), nil
}

// parseLimit reads limit, clamping it to the configured maximum.
func parseLimit(c *fiber.Ctx, limits config.SearchConfig) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return limits.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer, got %q", proximity.ErrInvalidQuery, raw)
	}
	if n == 0 || n > limits.MaxLimit {
		n = limits.MaxLimit
	}
	return n, nil
}

// parseAvailability maps available_only (default true) and the explicit
// availability=any|available|unavailable parameter onto a filter.
func parseAvailability(c *fiber.Ctx) (proximity.Availability, error) {
	if raw := c.Query("availability"); raw != "" {
		switch strings.ToLower(raw) {
		case "any", "all":
			return proximity.Any, nil
		case "available":
			return proximity.AvailableOnly, nil
		case "unavailable":
			return proximity.UnavailableOnly, nil
		}
		return proximity.Any, fmt.Errorf("%w: availability must be any, available or unavailable", proximity.ErrInvalidQuery)
	}
	raw := c.Query("available_only")
	if raw == "" {
		return proximity.AvailableOnly, nil
	}
	only, err := strconv.ParseBool(raw)
	if err != nil {
		return proximity.Any, fmt.Errorf("%w: available_only must be a boolean, got %q", proximity.ErrInvalidQuery, raw)
	}
	if only {
		return proximity.AvailableOnly, nil
	}
	return proximity.Any, nil
}

// parseNearbyQuery builds a proximity query from the request query string.
func parseNearbyQuery(c *fiber.Ctx, limits config.SearchConfig) (proximity.Query, error) {
	center, err := parsePoint(c)
	if err != nil {
		return proximity.Query{}, err
	}
	radius, err := parseRadius(c, limits)
	if err != nil {
		return proximity.Query{}, err
	}
	avail, err := parseAvailability(c)
	if err != nil {
		return proximity.Query{}, err
	}
	limit, err := parseLimit(c, limits)
	if err != nil {
		return proximity.Query{}, err
	}
	unit, err := proximity.ParseUnit(c.Query("unit"))
	if err != nil {
		return proximity.Query{}, err
	}
	q := proximity.Query{Center: center, RadiusMeters: radius, Availability: avail, Limit: limit, Unit: unit}
	return q, q.Validate()
}

// pageParams reads offset and limit for list endpoints.
func pageParams(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	limit = c.QueryInt("limit", 50)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}

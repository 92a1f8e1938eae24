package http

import (
	"github.com/gofiber/fiber/v2"
)

// ReverseGeocodeHandler resolves (lat, lng) into a postal address.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Geocoding == nil {
			return newError(c, fiber.StatusServiceUnavailable, "unavailable", "geocoding not configured")
		}
		point, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		addr, err := deps.Geocoding.Reverse(c.UserContext(), point)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(addr)
	}
}

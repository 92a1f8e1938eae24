package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control header on GET responses.
// Proximity results are cached briefly since they are computed over
// frequently changing availability; reverse geocodes are stable for a day.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case path == "/graphql":
		return "private, max-age=0"
	case strings.HasPrefix(path, "/v1/geocode/"):
		return "public, max-age=86400"
	case strings.HasSuffix(path, "/nearby") || strings.HasSuffix(path, "/matches"):
		return "public, max-age=30"
	case strings.HasPrefix(path, "/v1/ngos/") || strings.HasPrefix(path, "/v1/donations/"):
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/"):
		return "no-cache"
	}
	return ""
}

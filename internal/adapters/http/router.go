package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/donamatch/donamatch/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// legacyRoutes are the unversioned paths served before /v1 existed.
var legacyRoutes = []DeprecatedRoute{
	{Path: "/ngos/nearby", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/ngos/nearby"},
	{Path: "/donations/nearby", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/donations/nearby"},
}

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware("/v1/health", "/metrics"))

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	v1.Post("/ngos", withTimeout(CreateNGOHandler(deps)))
	v1.Get("/ngos", withTimeout(ListNGOsHandler(deps)))
	v1.Get("/ngos/nearby", withTimeout(NearbyNGOsHandler(deps)))
	v1.Get("/ngos/:id", withTimeout(GetNGOHandler(deps)))
	v1.Put("/ngos/:id", withTimeout(UpdateNGOHandler(deps)))
	v1.Delete("/ngos/:id", withTimeout(DeleteNGOHandler(deps)))

	v1.Post("/donations", withTimeout(CreateDonationHandler(deps)))
	v1.Get("/donations", withTimeout(ListDonationsHandler(deps)))
	v1.Get("/donations/nearby", withTimeout(NearbyDonationsHandler(deps)))
	v1.Get("/donations/:id", withTimeout(GetDonationHandler(deps)))
	v1.Put("/donations/:id", withTimeout(UpdateDonationHandler(deps)))
	v1.Post("/donations/:id/assign", withTimeout(AssignDonationHandler(deps)))
	v1.Get("/donations/:id/matches", withTimeout(DonationMatchesHandler(deps)))

	v1.Get("/geocode/reverse", withTimeout(ReverseGeocodeHandler(deps)))

	deprecated := DeprecationMiddleware(legacyRoutes)
	app.Get("/ngos/nearby", deprecated, withTimeout(NearbyNGOsHandler(deps)))
	app.Get("/donations/nearby", deprecated, withTimeout(NearbyDonationsHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

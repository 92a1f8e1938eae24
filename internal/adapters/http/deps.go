package http

import (
	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/donamatch/donamatch/internal/adapters/postgres"
	"github.com/donamatch/donamatch/internal/adapters/valkey"
	"github.com/donamatch/donamatch/internal/core/usecases"
	"github.com/donamatch/donamatch/internal/pkg/config"
)

// Dependencies holds all services needed by HTTP handlers. Only the services
// are required; the infrastructure handles are used by readiness checks and
// the WebSocket relay and may be nil.
type Dependencies struct {
	NGOs      *usecases.NGOService
	Donations *usecases.DonationService
	Geocoding *usecases.GeocodingService
	Search    config.SearchConfig
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
	Temporal  client.Client
}

// searchLimits returns the configured search bounds, falling back to the
// built-in defaults for zero values.
func (d *Dependencies) searchLimits() config.SearchConfig {
	s := d.Search
	if s.DefaultRadiusKm <= 0 {
		s.DefaultRadiusKm = 10
	}
	if s.MaxRadiusKm < s.DefaultRadiusKm {
		s.MaxRadiusKm = 500
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 50
	}
	if s.MaxLimit < s.DefaultLimit {
		s.MaxLimit = 200
	}
	return s
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/ports"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/pkg/telemetry"
)

const (
	ngoNearbyPrefix = "ngos:nearby:"
	ngoIDPrefix     = "ngos:id:"
)

// NGOService handles NGO business logic.
type NGOService struct {
	ngos      ports.NGORepository
	cache     ports.CacheService
	events    ports.EventPublisher
	nearbyTTL int
}

// NewNGOService creates a new NGOService. cache and events may be nil.
func NewNGOService(ngos ports.NGORepository, cache ports.CacheService, events ports.EventPublisher) *NGOService {
	return &NGOService{ngos: ngos, cache: cache, events: events, nearbyTTL: DefaultNearbyTTL}
}

// WithNearbyTTL overrides the proximity cache TTL in seconds. 0 disables it.
func (s *NGOService) WithNearbyTTL(seconds int) *NGOService {
	s.nearbyTTL = seconds
	return s
}

// Create registers a new NGO. New NGOs accept donations but are unverified.
func (s *NGOService) Create(ctx context.Context, ngo *domain.NGO) error {
	if !ngo.Location.Valid() {
		return fmt.Errorf("%w: location %s out of range", domain.ErrInvalidInput, ngo.Location)
	}
	ngo.IsAvailable = true
	ngo.Verified = false
	if err := s.ngos.Create(ctx, ngo); err != nil {
		return fmt.Errorf("create ngo: %w", err)
	}
	s.invalidate(ctx, 0)
	return nil
}

// GetByID returns a single NGO.
func (s *NGOService) GetByID(ctx context.Context, id int64) (*domain.NGO, error) {
	cacheKey := fmt.Sprintf("%s%d", ngoIDPrefix, id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var ngo domain.NGO
			if err := json.Unmarshal(data, &ngo); err == nil {
				return &ngo, nil
			}
		}
	}

	ngo, err := s.ngos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(ngo); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return ngo, nil
}

// List returns a page of NGOs ordered by id.
func (s *NGOService) List(ctx context.Context, offset, limit int) ([]domain.NGO, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.ngos.List(ctx, offset, limit)
}

// Update applies a partial update and returns the stored NGO.
func (s *NGOService) Update(ctx context.Context, id int64, upd domain.NGOUpdate) (*domain.NGO, error) {
	if upd.Location != nil && !upd.Location.Valid() {
		return nil, fmt.Errorf("%w: location %s out of range", domain.ErrInvalidInput, *upd.Location)
	}

	ngo, err := s.ngos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(ngo)
	if err := s.ngos.Update(ctx, ngo); err != nil {
		return nil, fmt.Errorf("update ngo %d: %w", id, err)
	}
	s.invalidate(ctx, id)

	if s.events != nil {
		if err := s.events.PublishNGOUpdated(ctx, ngo); err != nil {
			slog.WarnContext(ctx, "publish ngo.updated failed", "ngo_id", id, "error", err)
		}
	}
	return ngo, nil
}

// Delete removes an NGO.
func (s *NGOService) Delete(ctx context.Context, id int64) error {
	if err := s.ngos.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Nearby returns the NGOs within q.RadiusMeters of q.Center.
func (s *NGOService) Nearby(ctx context.Context, q proximity.Query) (proximity.Result[domain.NGO], error) {
	return nearby(ctx, s.cache, s.nearbyTTL, "ngo", ngoNearbyPrefix, telemetry.SpanNGONearby, q, s.ngos.Snapshot)
}

func (s *NGOService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if id != 0 {
		_ = s.cache.Delete(ctx, fmt.Sprintf("%s%d", ngoIDPrefix, id))
	}
	if err := s.cache.DeletePrefix(ctx, ngoNearbyPrefix); err != nil {
		slog.WarnContext(ctx, "invalidate ngo nearby cache", "error", err)
	}
}

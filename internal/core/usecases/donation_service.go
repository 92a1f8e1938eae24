package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/ports"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/pkg/metrics"
	"github.com/donamatch/donamatch/internal/pkg/telemetry"
)

const (
	donationNearbyPrefix = "donations:nearby:"
	donationIDPrefix     = "donations:id:"
)

// DonationService handles donation business logic: intake, lookup,
// proximity queries and assignment to NGOs.
type DonationService struct {
	donations ports.DonationRepository
	ngos      ports.NGORepository
	cache     ports.CacheService
	events    ports.EventPublisher
	nearbyTTL int
	now       func() time.Time
}

// NewDonationService creates a new DonationService. cache and events may be nil.
func NewDonationService(donations ports.DonationRepository, ngos ports.NGORepository, cache ports.CacheService, events ports.EventPublisher) *DonationService {
	return &DonationService{
		donations: donations,
		ngos:      ngos,
		cache:     cache,
		events:    events,
		nearbyTTL: DefaultNearbyTTL,
		now:       time.Now,
	}
}

// WithNearbyTTL overrides the proximity cache TTL in seconds. 0 disables it.
func (s *DonationService) WithNearbyTTL(seconds int) *DonationService {
	s.nearbyTTL = seconds
	return s
}

// Create records a new pending donation and announces it.
func (s *DonationService) Create(ctx context.Context, d *domain.Donation) error {
	if !d.Location.Valid() {
		return fmt.Errorf("%w: location %s out of range", domain.ErrInvalidInput, d.Location)
	}
	d.Status = domain.StatusPending
	d.NGOID = nil
	if err := s.donations.Create(ctx, d); err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	s.invalidate(ctx, 0)
	s.publish(ctx, domain.EventDonationCreated, d)
	return nil
}

// GetByID returns a single donation.
func (s *DonationService) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	cacheKey := fmt.Sprintf("%s%d", donationIDPrefix, id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var d domain.Donation
			if err := json.Unmarshal(data, &d); err == nil {
				return &d, nil
			}
		}
	}

	d, err := s.donations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(d); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return d, nil
}

// List returns a page of donations, optionally filtered by status.
func (s *DonationService) List(ctx context.Context, status domain.DonationStatus, offset, limit int) ([]domain.Donation, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.donations.List(ctx, status, offset, limit)
}

// Update applies a partial update and returns the stored donation.
func (s *DonationService) Update(ctx context.Context, id int64, upd domain.DonationUpdate) (*domain.Donation, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *upd.Status)
	}

	d, err := s.donations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(d)
	if err := s.donations.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update donation %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	return d, nil
}

// Nearby returns donations within q.RadiusMeters of q.Center. Pending
// donations count as available.
func (s *DonationService) Nearby(ctx context.Context, q proximity.Query) (proximity.Result[domain.Donation], error) {
	return nearby(ctx, s.cache, s.nearbyTTL, "donation", donationNearbyPrefix, telemetry.SpanDonationNearby, q, s.donations.Snapshot)
}

// Matches returns the available NGOs closest to a donation.
func (s *DonationService) Matches(ctx context.Context, donationID int64, radiusMeters float64, limit int, unit proximity.Unit) (proximity.Result[domain.NGO], error) {
	d, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return proximity.Result[domain.NGO]{Unit: unit}, err
	}
	q := proximity.Query{
		Center:       d.Location,
		RadiusMeters: radiusMeters,
		Availability: proximity.AvailableOnly,
		Limit:        limit,
		Unit:         unit,
	}
	return nearby(ctx, s.cache, s.nearbyTTL, "ngo", ngoNearbyPrefix, telemetry.SpanDonationMatches, q, s.ngos.Snapshot)
}

// Assign hands a pending donation to an available NGO.
func (s *DonationService) Assign(ctx context.Context, donationID, ngoID int64) (*domain.Donation, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanDonationAssign,
		telemetry.AttrDonationID.Int64(donationID), telemetry.AttrNGOID.Int64(ngoID))
	defer span.End()

	d, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !d.Available() {
		return nil, fmt.Errorf("donation %d is %s: %w", donationID, d.Status, domain.ErrNotAssignable)
	}

	ngo, err := s.ngos.GetByID(ctx, ngoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ngo %d: %w", ngoID, domain.ErrNotFound)
		}
		return nil, err
	}
	if !ngo.IsAvailable {
		return nil, fmt.Errorf("ngo %d: %w", ngoID, domain.ErrNGOUnavailable)
	}

	assigned, err := s.donations.Assign(ctx, donationID, ngoID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	metrics.DonationsAssigned.Inc()
	s.invalidate(ctx, donationID)
	s.publish(ctx, domain.EventDonationAssigned, assigned)

	slog.InfoContext(ctx, "donation assigned", "donation_id", donationID, "ngo_id", ngoID)
	return assigned, nil
}

func (s *DonationService) publish(ctx context.Context, eventType string, d *domain.Donation) {
	if s.events == nil {
		return
	}
	ev := &domain.DonationEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		DonationID: d.ID,
		NGOID:      d.NGOID,
		Title:      d.Title,
		DonorName:  d.DonorName,
		Location:   d.Location,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishDonationEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish donation event failed", "type", eventType, "donation_id", d.ID, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType).Inc()
}

func (s *DonationService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if id != 0 {
		_ = s.cache.Delete(ctx, fmt.Sprintf("%s%d", donationIDPrefix, id))
	}
	if err := s.cache.DeletePrefix(ctx, donationNearbyPrefix); err != nil {
		slog.WarnContext(ctx, "invalidate donation nearby cache", "error", err)
	}
}

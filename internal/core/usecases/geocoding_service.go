package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/ports"
	"github.com/donamatch/donamatch/internal/pkg/metrics"
	"github.com/donamatch/donamatch/internal/pkg/telemetry"
)

// GeocodingService resolves coordinates to addresses through a Geocoder.
type GeocodingService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
}

// NewGeocodingService creates a new GeocodingService. cache may be nil.
func NewGeocodingService(geocoder ports.Geocoder, cache ports.CacheService) *GeocodingService {
	return &GeocodingService{geocoder: geocoder, cache: cache}
}

// Reverse returns the address nearest to point.
func (s *GeocodingService) Reverse(ctx context.Context, point domain.GeoPoint) (*domain.Address, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: coordinates %s out of range", domain.ErrInvalidInput, point)
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanReverseGeocode)
	defer span.End()

	// ~1 m precision is plenty for an address lookup.
	cacheKey := fmt.Sprintf("geocode:reverse:%.5f:%.5f", point.Lat, point.Lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var addr domain.Address
			if err := json.Unmarshal(data, &addr); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return &addr, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	addr, err := s.geocoder.Reverse(ctx, point)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Addresses rarely change, cache for a day.
	if s.cache != nil {
		if data, err := json.Marshal(addr); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 86400)
		}
	}
	return addr, nil
}

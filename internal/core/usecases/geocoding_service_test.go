package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/usecases"
)

type mockGeocoder struct {
	calls int
	err   error
}

func (m *mockGeocoder) Reverse(ctx context.Context, point domain.GeoPoint) (*domain.Address, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Address{
		DisplayName: "Howard Street, San Francisco",
		Components:  map[string]string{"road": "Howard Street", "city": "San Francisco"},
		Formatted:   "Howard Street, San Francisco",
	}, nil
}

func TestGeocodingService_Reverse_Cached(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodingService(geo, newMemCache())

	for range 2 {
		addr, err := svc.Reverse(context.Background(), soma)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if addr.Components["city"] != "San Francisco" {
			t.Errorf("unexpected address %+v", addr)
		}
	}
	if geo.calls != 1 {
		t.Errorf("expected one upstream call, got %d", geo.calls)
	}
}

func TestGeocodingService_Reverse_InvalidPoint(t *testing.T) {
	geo := &mockGeocoder{}
	svc := usecases.NewGeocodingService(geo, nil)

	if _, err := svc.Reverse(context.Background(), domain.GeoPoint{Lat: 95, Lon: 0}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if geo.calls != 0 {
		t.Error("geocoder should not be called for an invalid point")
	}
}

func TestGeocodingService_Reverse_UpstreamErrorNotCached(t *testing.T) {
	geo := &mockGeocoder{err: fmt.Errorf("%w: 503", domain.ErrUpstream)}
	cache := newMemCache()
	svc := usecases.NewGeocodingService(geo, cache)

	if _, err := svc.Reverse(context.Background(), soma); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if cache.sets != 0 {
		t.Errorf("failures must not be cached, got %d writes", cache.sets)
	}
}

package ports

import (
	"context"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDonationEvent(ctx context.Context, event *domain.DonationEvent) error
	PublishNGOUpdated(ctx context.Context, ngo *domain.NGO) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeDonationEvents(ctx context.Context, eventType string, handler func(ctx context.Context, event *domain.DonationEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// NotificationService delivers rendered notices.
type NotificationService interface {
	Send(ctx context.Context, notice domain.Notice) error
}

// Geocoder resolves coordinates to a postal address.
type Geocoder interface {
	Reverse(ctx context.Context, point domain.GeoPoint) (*domain.Address, error)
}

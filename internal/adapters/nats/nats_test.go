package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donamatch/donamatch/internal/core/domain"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "donamatch.donation.assigned", Subject(domain.EventDonationAssigned))
	assert.Equal(t, "notifier-donation-assigned", DurableName("notifier", domain.EventDonationAssigned))

	cfg := StreamConfig("DONATIONS")
	assert.Equal(t, "DONATIONS", cfg.Name)
	assert.Equal(t, nats.LimitsPolicy, cfg.Retention)
	assert.Contains(t, cfg.Subjects, "donamatch.donation.>")
}

func TestHandleDonationMsg(t *testing.T) {
	ngoID := int64(3)
	ev := domain.DonationEvent{
		ID:         "e-1",
		Type:       domain.EventDonationAssigned,
		DonationID: 9,
		NGOID:      &ngoID,
		Location:   domain.NewGeoPoint(37.77, -122.41),
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var got *domain.DonationEvent
	err = handleDonationMsg(context.Background(), data, func(_ context.Context, e *domain.DonationEvent) error {
		got = e
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(9), got.DonationID)
	assert.Equal(t, int64(3), *got.NGOID)
	assert.InDelta(t, 37.77, got.Location.Lat, 1e-9)

	assert.Error(t, handleDonationMsg(context.Background(), []byte("{"), func(context.Context, *domain.DonationEvent) error { return nil }))

	boom := errors.New("boom")
	err = handleDonationMsg(context.Background(), data, func(context.Context, *domain.DonationEvent) error { return boom })
	assert.ErrorIs(t, err, boom)
}

package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// SubjectPrefix namespaces every subject this service publishes.
const SubjectPrefix = "donamatch."

// Subject maps an event type such as "donation.assigned" to its NATS subject.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// StreamConfig returns the JetStream stream holding donation and NGO events.
func StreamConfig(name string) nats.StreamConfig {
	return nats.StreamConfig{
		Name:      name,
		Subjects:  []string{SubjectPrefix + "donation.>", SubjectPrefix + "ngo.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
}

// NewPublisher connects to NATS, enables JetStream and ensures the stream exists.
func NewPublisher(url, stream string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := StreamConfig(stream)
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishDonationEvent publishes event on its type's subject. The event id is
// the JetStream message id, so retried publishes are deduplicated.
func (p *Publisher) PublishDonationEvent(ctx context.Context, event *domain.DonationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(Subject(event.Type), data, nats.MsgId(event.ID), nats.Context(ctx))
	return err
}

// PublishNGOUpdated publishes the NGO's new state.
func (p *Publisher) PublishNGOUpdated(ctx context.Context, ngo *domain.NGO) error {
	data, err := json.Marshal(ngo)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(Subject(domain.EventNGOUpdated), data, nats.MsgId(uuid.NewString()), nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return connect(url)
}

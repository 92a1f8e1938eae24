package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS. durable prefixes consumer names so several
// services can each see every event.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// DurableName builds a consumer name; JetStream forbids dots in it.
func DurableName(prefix, eventType string) string {
	return prefix + "-" + strings.ReplaceAll(eventType, ".", "-")
}

// SubscribeDonationEvents delivers every event of eventType to handler. A
// handler error naks the message for redelivery, up to five attempts.
func (s *Subscriber) SubscribeDonationEvents(ctx context.Context, eventType string, handler func(ctx context.Context, event *domain.DonationEvent) error) error {
	sub, err := s.js.Subscribe(Subject(eventType), func(msg *nats.Msg) {
		if err := handleDonationMsg(ctx, msg.Data, handler); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(DurableName(s.durable, eventType)),
		nats.ManualAck(),
		nats.MaxDeliver(5),
		nats.DeliverAll(),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func handleDonationMsg(ctx context.Context, data []byte, handler func(ctx context.Context, event *domain.DonationEvent) error) error {
	var event domain.DonationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode donation event: %w", err)
	}
	return handler(ctx, &event)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/donamatch/donamatch/internal/adapters/nats"
	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/core/proximity"
	"github.com/donamatch/donamatch/internal/pkg/geospatial"
	"github.com/donamatch/donamatch/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
//
//	{"action":"subscribe","channel":"donations","lat":37.77,"lon":-122.42,"radius_km":5}
//	{"action":"subscribe","channel":"assignments","ngo_id":12}
type wsMessage struct {
	Action   string   `json:"action"`  // "subscribe" | "unsubscribe"
	Channel  string   `json:"channel"` // "donations" | "assignments" | "ngos" (default: donations)
	NGOID    int64    `json:"ngo_id,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	RadiusKm float64  `json:"radius_km,omitempty"`
}

func channelSubject(channel string) (string, bool) {
	switch channel {
	case "", "donations":
		return natsadapter.Subject("donation.>"), true
	case "assignments":
		return natsadapter.Subject(domain.EventDonationAssigned), true
	case "ngos":
		return natsadapter.Subject("ngo.>"), true
	}
	return "", false
}

// eventFilter narrows a donation event feed to one NGO or to events located
// within a radius of a point. The zero value passes everything.
type eventFilter struct {
	ngoID        int64
	center       *domain.GeoPoint
	radiusMeters float64
}

func newEventFilter(m wsMessage) (eventFilter, error) {
	f := eventFilter{ngoID: m.NGOID}
	if m.Lat == nil && m.Lon == nil {
		return f, nil
	}
	if m.Lat == nil || m.Lon == nil {
		return f, errors.New("lat and lon must be given together")
	}
	q := proximity.Query{
		Center:       domain.NewGeoPoint(*m.Lat, *m.Lon),
		RadiusMeters: geospatial.KmToMeters(m.RadiusKm),
	}
	if err := q.Validate(); err != nil {
		return f, err
	}
	f.center = &q.Center
	f.radiusMeters = q.RadiusMeters
	return f, nil
}

// allows reports whether a raw event payload passes the filter. NGO payloads
// carry no ngo_id, so only donation events are narrowed.
func (f eventFilter) allows(data []byte) bool {
	if f.ngoID == 0 && f.center == nil {
		return true
	}
	var ev domain.DonationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return false
	}
	if f.ngoID != 0 && (ev.NGOID == nil || *ev.NGOID != f.ngoID) {
		return false
	}
	if f.center != nil && proximity.Distance(*f.center, ev.Location) > f.radiusMeters+proximity.Epsilon {
		return false
	}
	return true
}

type unsubscriber interface {
	Unsubscribe() error
}

// wsSubscriptions tracks one connection's subscriptions, one per subject.
// The unfiltered default feed is dropped on the first explicit subscribe.
type wsSubscriptions struct {
	subscribe func(subject string, f eventFilter) (unsubscriber, error)
	subs      map[string]unsubscriber
	defaulted bool
}

func newWSSubscriptions(subscribe func(string, eventFilter) (unsubscriber, error)) *wsSubscriptions {
	return &wsSubscriptions{subscribe: subscribe, subs: make(map[string]unsubscriber)}
}

func (w *wsSubscriptions) subscribeDefault() error {
	subject, _ := channelSubject("")
	s, err := w.subscribe(subject, eventFilter{})
	if err != nil {
		return err
	}
	w.subs[subject] = s
	w.defaulted = true
	return nil
}

// add subscribes to subject with f, replacing any earlier filter on it.
func (w *wsSubscriptions) add(subject string, f eventFilter) error {
	if w.defaulted {
		w.close()
		w.defaulted = false
	}
	if old, ok := w.subs[subject]; ok {
		_ = old.Unsubscribe()
		delete(w.subs, subject)
	}
	s, err := w.subscribe(subject, f)
	if err != nil {
		return err
	}
	w.subs[subject] = s
	return nil
}

func (w *wsSubscriptions) remove(subject string) bool {
	s, ok := w.subs[subject]
	if !ok {
		return false
	}
	_ = s.Unsubscribe()
	delete(w.subs, subject)
	w.defaulted = false
	return true
}

func (w *wsSubscriptions) close() {
	for subject, s := range w.subs {
		_ = s.Unsubscribe()
		delete(w.subs, subject)
	}
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// donation and NGO events from NATS to connected clients. New clients are
// subscribed to every donation event until their first explicit subscribe.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"event feed not configured"}`))
			return
		}
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		log.Info("ws client connected")

		var mu sync.Mutex

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subs := newWSSubscriptions(func(subject string, f eventFilter) (unsubscriber, error) {
			return nc.Subscribe(subject, func(msg *nats.Msg) {
				if f.allows(msg.Data) {
					_ = writeJSON(json.RawMessage(msg.Data))
				}
			})
		})
		if err := subs.subscribeDefault(); err != nil {
			log.Error("ws default subscribe failed", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := channelSubject(m.Channel)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				f, err := newEventFilter(m)
				if err != nil {
					_ = writeJSON(map[string]string{"error": err.Error()})
					continue
				}
				if err := subs.add(subject, f); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if subs.remove(subject) {
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		subs.close()
		log.Info("ws client disconnected")
	}
}

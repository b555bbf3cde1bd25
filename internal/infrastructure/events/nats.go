// Package events publishes booking events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// HeaderMessageID lets JetStream consumers deduplicate redeliveries.
const HeaderMessageID = "Nats-Msg-Id"

// msgPublisher is the subset of *nats.Conn the publisher uses.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher forwards booking events to NATS subjects of the form
// <prefix>.<event type>, e.g. coworking.booking.created.
type Publisher struct {
	conn   msgPublisher
	prefix string
}

// Connect dials the NATS server with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("coworking-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn msgPublisher, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

var _ ports.EventHandler = (*Publisher)(nil)

func (p *Publisher) Name() string { return "nats" }

// Subject returns the subject an event of type t is published on.
func (p *Publisher) Subject(t domain.BookingEventType) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

func (p *Publisher) Handle(_ context.Context, event domain.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	msg := nats.NewMsg(p.Subject(event.Type))
	msg.Header.Set(HeaderMessageID, uuid.NewString())
	msg.Data = payload
	return p.conn.PublishMsg(msg)
}

// Ping is the readiness check for the NATS connection.
func Ping(conn *nats.Conn) func(ctx context.Context) error {
	return func(context.Context) error {
		if !conn.IsConnected() {
			return fmt.Errorf("nats: connection status %v", conn.Status())
		}
		return nil
	}
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (c *fakeConn) PublishMsg(m *nats.Msg) error {
	c.msgs = append(c.msgs, m)
	return c.err
}

func TestPublisher_Handle(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "coworking")
	at := time.Date(2030, 3, 14, 10, 0, 0, 0, time.UTC)

	err := p.Handle(context.Background(), domain.BookingEvent{
		Type:       domain.BookingCreatedEvent,
		BookingID:  9,
		Status:     domain.BookingPending,
		StartTime:  at,
		EndTime:    at.Add(time.Hour),
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "coworking.booking.created", msg.Subject)
	assert.NotEmpty(t, msg.Header.Get(HeaderMessageID))

	var decoded domain.BookingEvent
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, int64(9), decoded.BookingID)
	assert.Equal(t, domain.BookingPending, decoded.Status)
}

func TestPublisher_UniqueMessageIDs(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "")
	e := domain.BookingEvent{Type: domain.BookingAcceptedEvent, BookingID: 1}

	require.NoError(t, p.Handle(context.Background(), e))
	require.NoError(t, p.Handle(context.Background(), e))

	assert.Equal(t, "booking.accepted", conn.msgs[0].Subject)
	assert.NotEqual(t, conn.msgs[0].Header.Get(HeaderMessageID), conn.msgs[1].Header.Get(HeaderMessageID))
}

func TestPublisher_PropagatesErrors(t *testing.T) {
	p := NewPublisher(&fakeConn{err: nats.ErrConnectionClosed}, "coworking")
	err := p.Handle(context.Background(), domain.BookingEvent{Type: domain.BookingCancelledEvent})
	assert.True(t, errors.Is(err, nats.ErrConnectionClosed))
	assert.Equal(t, "nats", p.Name())
}

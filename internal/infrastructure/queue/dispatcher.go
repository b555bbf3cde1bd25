// Package queue fans booking events out to their sinks on a fixed pool of
// workers.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/api/metrics"
	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

const (
	defaultWorkers        = 4
	channelBuffer         = 256
	defaultHandlerTimeout = 10 * time.Second
)

// Dispatcher routes booking events to a fixed set of workers using consistent
// hashing on the booking ID, guaranteeing per-booking event ordering. Each
// event is handed to every handler in registration order; a failing handler
// does not stop the others.
type Dispatcher struct {
	workers  []chan domain.BookingEvent
	handlers []ports.EventHandler
	timeout  time.Duration
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handlers []ports.EventHandler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.BookingEvent, numWorkers),
		handlers: handlers,
		timeout:  defaultHandlerTimeout,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.BookingEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx stops them at once,
// Close stops them after the queued events are handled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues event on the worker responsible for its booking. It never
// blocks: when that worker's buffer is full, or the dispatcher is closed, the
// event is dropped and counted.
func (d *Dispatcher) Publish(_ context.Context, event domain.BookingEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	idx := d.shardIndex(event.BookingID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "worker queue full")
	}
}

// Close stops accepting events and waits until the queued ones are handled
// or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) drop(event domain.BookingEvent, reason string) {
	metrics.EventsDroppedTotal.Inc()
	d.log.Warn().
		Str("event", string(event.Type)).
		Int64("booking_id", event.BookingID).
		Str("reason", reason).
		Msg("booking event dropped")
}

// shardIndex maps a booking ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(bookingID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(bookingID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.BookingEvent) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, event domain.BookingEvent) {
	for _, h := range d.handlers {
		start := time.Now()
		hctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := h.Handle(hctx, event)
		cancel()
		metrics.EventHandlingDuration.WithLabelValues(h.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.EventsHandledTotal.WithLabelValues(h.Name(), "error").Inc()
			d.log.Error().Err(err).
				Str("handler", h.Name()).
				Str("event", string(event.Type)).
				Int64("booking_id", event.BookingID).
				Int("worker_id", workerID).
				Msg("event handling failed")
			continue
		}
		metrics.EventsHandledTotal.WithLabelValues(h.Name(), "ok").Inc()
	}
}

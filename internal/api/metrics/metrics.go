// Package metrics defines and registers all custom Prometheus metrics for the
// coworking API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coworking"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings created through the API.
// Label:
//   - status: initial status of the booking ("ACTIVE" or "PENDING")
var BookingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created, by initial status.",
	},
	[]string{"status"},
)

// BookingConflictsTotal counts booking requests rejected because the place
// was already taken for the requested window.
var BookingConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Total number of booking requests rejected for overlapping an existing booking.",
	},
)

// BookingTransitionsTotal counts booking state changes.
// Label:
//   - event: the lifecycle event (e.g. "booking.accepted")
var BookingTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Total number of booking status changes, by lifecycle event.",
	},
	[]string{"event"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionRefreshTotal counts transparent session refresh attempts.
// Label:
//   - result: "refreshed" or "failed"
var SessionRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refresh_total",
		Help:      "Total number of transparent session refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Event dispatch metrics ────────────────────────────────────────────────────

// EventsHandledTotal counts booking events delivered to each sink.
// Labels:
//   - handler: sink name (e.g. "audit", "nats", "telegram")
//   - result: "ok" or "error"
var EventsHandledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_handled_total",
		Help:      "Total number of booking events delivered to sinks, by handler and result.",
	},
	[]string{"handler", "result"},
)

// EventsDroppedTotal counts events discarded because the dispatcher was full or stopped.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of booking events dropped before reaching any sink.",
	},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventHandlingDuration measures how long a sink takes to handle one event.
// Label:
//   - handler: sink name
var EventHandlingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_handling_duration_seconds",
		Help:      "Duration of delivering one booking event to one sink.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"handler"},
)

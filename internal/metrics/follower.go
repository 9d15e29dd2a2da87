package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	followerPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sampledb",
			Subsystem: "follower",
			Name:      "polls_total",
			Help:      "Object log polls by result (ok, error, skipped).",
		},
		[]string{"follower", "result"},
	)

	followerEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sampledb",
			Subsystem: "follower",
			Name:      "entries_total",
			Help:      "Object log entries dispatched, by entry type and outcome.",
		},
		[]string{"follower", "type", "outcome"},
	)

	followerCheckpoint = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sampledb",
			Subsystem: "follower",
			Name:      "checkpoint_log_entry_id",
			Help:      "Last object log entry id handled by the follower.",
		},
		[]string{"follower"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sampledb",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 open, 2 half open.",
		},
		[]string{"breaker"},
	)
)

// Poll results.
const (
	PollOK      = "ok"
	PollError   = "error"
	PollSkipped = "skipped"
)

// Entry outcomes.
const (
	EntryHandled = "handled"
	EntryFailed  = "failed"
)

func ObservePoll(follower, result string) {
	followerPolls.WithLabelValues(follower, result).Inc()
}

func ObserveEntry(follower, entryType, outcome string) {
	followerEntries.WithLabelValues(follower, entryType, outcome).Inc()
}

func SetCheckpoint(follower string, logEntryID int) {
	followerCheckpoint.WithLabelValues(follower).Set(float64(logEntryID))
}

func SetBreakerState(breaker string, state int) {
	breakerState.WithLabelValues(breaker).Set(float64(state))
}

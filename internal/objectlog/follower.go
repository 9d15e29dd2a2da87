package objectlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/ryanbastic/go-sampledb/internal/circuitbreaker"
	"github.com/ryanbastic/go-sampledb/internal/metrics"
	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

// Follower polls the object log and dispatches new entries in ascending
// log_entry_id order.
type Follower struct {
	name         string
	source       Source
	registry     *Registry
	checkpoint   Checkpoint
	breaker      *circuitbreaker.Breaker
	pollInterval time.Duration
	logger       *slog.Logger

	lastID atomic.Int64
}

// NewFollower creates a Follower. breaker may be nil.
func NewFollower(
	name string,
	source Source,
	registry *Registry,
	checkpoint Checkpoint,
	breaker *circuitbreaker.Breaker,
	pollInterval time.Duration,
	logger *slog.Logger,
) *Follower {
	return &Follower{
		name:         name,
		source:       source,
		registry:     registry,
		checkpoint:   checkpoint,
		breaker:      breaker,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run loads the checkpoint and polls until ctx is cancelled. The final
// checkpoint is saved before returning.
func (f *Follower) Run(ctx context.Context) error {
	if err := f.Load(ctx); err != nil {
		return err
	}
	f.logger.Info("object log follower started", "follower", f.name, "after_id", f.LastID(), "handlers", f.registry.Len())

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := f.checkpoint.Save(context.Background(), f.name, f.LastID()); err != nil {
				f.logger.Error("failed to save final checkpoint", "follower", f.name, "error", err)
				return fmt.Errorf("save final checkpoint: %w", err)
			}
			f.logger.Info("object log follower stopped", "follower", f.name, "after_id", f.LastID())
			return nil
		case <-ticker.C:
			if _, err := f.Poll(ctx); err != nil && ctx.Err() == nil {
				f.logger.Error("object log poll failed", "follower", f.name, "error", err)
			}
		}
	}
}

// Load reads the stored checkpoint.
func (f *Follower) Load(ctx context.Context) error {
	id, err := f.checkpoint.Load(ctx, f.name)
	if err != nil {
		return fmt.Errorf("load checkpoint %q: %w", f.name, err)
	}
	f.lastID.Store(int64(id))
	metrics.SetCheckpoint(f.name, id)
	return nil
}

// Name returns the checkpoint name.
func (f *Follower) Name() string {
	return f.name
}

// LastID returns the id of the last handled entry. It is safe to call while
// Run is active.
func (f *Follower) LastID() int {
	return int(f.lastID.Load())
}

// Poll fetches and dispatches one batch and returns how many entries were
// handled. A failing handler ends the batch; the entry is retried on the
// next poll. Poll returns circuitbreaker.ErrOpen without contacting
// SampleDB while the breaker is open.
func (f *Follower) Poll(ctx context.Context) (int, error) {
	var entries []sampledb.ObjectLogEntry
	fetch := func(ctx context.Context) error {
		var err error
		entries, err = f.source.List(ctx, f.LastID())
		return err
	}

	var err error
	if f.breaker != nil {
		err = f.breaker.Do(ctx, fetch)
	} else {
		err = fetch(ctx)
	}
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		metrics.ObservePoll(f.name, metrics.PollSkipped)
		return 0, err
	case err != nil:
		metrics.ObservePoll(f.name, metrics.PollError)
		return 0, fmt.Errorf("list object log after %d: %w", f.LastID(), err)
	}
	metrics.ObservePoll(f.name, metrics.PollOK)

	handled := f.dispatch(ctx, entries)
	if handled > 0 {
		last := f.LastID()
		if err := f.checkpoint.Save(ctx, f.name, last); err != nil {
			return handled, fmt.Errorf("save checkpoint: %w", err)
		}
		metrics.SetCheckpoint(f.name, last)
	}
	return handled, nil
}

func (f *Follower) dispatch(ctx context.Context, entries []sampledb.ObjectLogEntry) int {
	slices.SortFunc(entries, func(a, b sampledb.ObjectLogEntry) int {
		return a.LogEntryID - b.LogEntryID
	})

	handled := 0
	for _, e := range entries {
		if e.LogEntryID <= f.LastID() {
			continue
		}
		for _, handler := range f.registry.HandlersFor(e.Type) {
			if err := handler(ctx, e); err != nil {
				metrics.ObserveEntry(f.name, e.Type, metrics.EntryFailed)
				f.logger.Error("object log handler failed",
					"follower", f.name,
					"log_entry_id", e.LogEntryID,
					"type", e.Type,
					"object_id", e.ObjectID,
					"error", err,
				)
				return handled
			}
		}
		metrics.ObserveEntry(f.name, e.Type, metrics.EntryHandled)
		f.lastID.Store(int64(e.LogEntryID))
		handled++
	}
	return handled
}

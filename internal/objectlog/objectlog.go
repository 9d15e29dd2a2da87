// Package objectlog follows a SampleDB object log and hands every new entry
// to registered handlers.
package objectlog

import (
	"context"
	"errors"
	"sync"

	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

// HandlerFunc is invoked for each new entry in log order. It may be called
// again for the same entry after a failure, so it must be idempotent.
type HandlerFunc func(ctx context.Context, e sampledb.ObjectLogEntry) error

// AllTypes registers a handler for every entry type.
const AllTypes = "*"

// Source lists log entries after a given id. *sampledb.ObjectLogService
// implements it.
type Source interface {
	List(ctx context.Context, afterID int) ([]sampledb.ObjectLogEntry, error)
}

// Checkpoint persists the last handled log entry id per follower name.
type Checkpoint interface {
	Load(ctx context.Context, name string) (int, error)
	Save(ctx context.Context, name string, logEntryID int) error
}

// IsUnavailable reports whether err means SampleDB could not answer, as
// opposed to rejecting the request. Only these count against the breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, sampledb.ErrServer) ||
		errors.Is(err, sampledb.ErrTransport) ||
		errors.Is(err, sampledb.ErrMalformedResponse)
}

// Registry holds handlers grouped by entry type.
type Registry struct {
	handlers map[string][]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]HandlerFunc)}
}

// Register adds a handler for entries of entryType, or AllTypes.
func (r *Registry) Register(entryType string, handler HandlerFunc) {
	r.handlers[entryType] = append(r.handlers[entryType], handler)
}

// HandlersFor returns the handlers for entryType followed by the AllTypes
// handlers.
func (r *Registry) HandlersFor(entryType string) []HandlerFunc {
	specific := r.handlers[entryType]
	all := r.handlers[AllTypes]
	if entryType == AllTypes {
		return all
	}
	out := make([]HandlerFunc, 0, len(specific)+len(all))
	out = append(out, specific...)
	return append(out, all...)
}

func (r *Registry) Len() int {
	n := 0
	for _, hs := range r.handlers {
		n += len(hs)
	}
	return n
}

// MemoryCheckpoint keeps checkpoints in memory.
type MemoryCheckpoint struct {
	mu  sync.Mutex
	ids map[string]int
}

func NewMemoryCheckpoint() *MemoryCheckpoint {
	return &MemoryCheckpoint{ids: make(map[string]int)}
}

func (c *MemoryCheckpoint) Load(_ context.Context, name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids[name], nil
}

func (c *MemoryCheckpoint) Save(_ context.Context, name string, logEntryID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[name] = logEntryID
	return nil
}

// Package fakeserver is an in-memory SampleDB API for integration tests and
// local development. It is seeded with a small fixture dataset and records
// an object log entry for every object mutation.
package fakeserver

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/ryanbastic/go-sampledb/internal/api"
	"github.com/ryanbastic/go-sampledb/internal/metrics"
)

const prefix = "/api/v1"

// Server serves the fake API. All requests must carry the configured bearer
// key and act as the user with id 1.
type Server struct {
	apiKey string
	userID int
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
	db *store

	handler http.Handler
}

type Option func(*Server)

// WithClock fixes the time source used for created timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(logger *slog.Logger, apiKey string, opts ...Option) *Server {
	s := &Server{
		apiKey: apiKey,
		userID: 1,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.db = seed(s.now())

	mux := chi.NewRouter()
	mux.Use(api.RequestID)
	mux.Use(api.Logging(logger))
	mux.Use(api.Recovery(logger))
	mux.Use(metrics.Metrics)

	hapi := humachi.New(mux, huma.DefaultConfig("SampleDB (fake)", "1.0.0"))
	hapi.UseMiddleware(s.requireBearer(hapi))

	s.registerDirectoryRoutes(hapi)
	s.registerInstrumentRoutes(hapi)
	s.registerObjectRoutes(hapi)
	s.registerObjectDetailRoutes(hapi)

	s.handler = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ObjectLog returns a copy of the recorded object log.
func (s *Server) ObjectLog() []ObjectLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ObjectLogEntry(nil), s.db.objectLog...)
}

func (s *Server) requireBearer(hapi huma.API) func(huma.Context, func(huma.Context)) {
	want := []byte("Bearer " + s.apiKey)
	return func(ctx huma.Context, next func(huma.Context)) {
		if subtle.ConstantTimeCompare([]byte(ctx.Header("Authorization")), want) != 1 {
			_ = huma.WriteErr(hapi, ctx, http.StatusUnauthorized, "invalid or missing api key")
			return
		}
		next(ctx)
	}
}

type output[T any] struct {
	Body T
}

func reply[T any](v T) (*output[T], error) {
	return &output[T]{Body: v}, nil
}

type createdOutput struct {
	Location string `header:"Location" doc:"URL of the created resource"`
}

func get[I, O any](hapi huma.API, id, path string, h func(context.Context, *I) (*O, error)) {
	huma.Register(hapi, huma.Operation{
		OperationID: id,
		Method:      http.MethodGet,
		Path:        prefix + path,
	}, h)
}

func post[I, O any](hapi huma.API, id, path string, h func(context.Context, *I) (*O, error)) {
	huma.Register(hapi, huma.Operation{
		OperationID:   id,
		Method:        http.MethodPost,
		Path:          prefix + path,
		DefaultStatus: http.StatusCreated,
	}, h)
}

func put[I, O any](hapi huma.API, id, path string, h func(context.Context, *I) (*O, error)) {
	huma.Register(hapi, huma.Operation{
		OperationID: id,
		Method:      http.MethodPut,
		Path:        prefix + path,
	}, h)
}

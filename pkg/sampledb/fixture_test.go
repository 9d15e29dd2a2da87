package sampledb

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const testAPIKey = "test-api-key"

const (
	userNils     = `{"user_id":1,"name":"Nils Weber","orcid":"12345","affiliation":"WWU Münster"}`
	userTest     = `{"user_id":2,"name":"Test User","orcid":null,"affiliation":null}`
	locationIG1  = `{"location_id":1,"name":"IG1","description":"IG1","parent_location_id":2,"type_id":3,"is_hidden":false}`
	logEntryJSON = `{"log_entry_id":1,"utc_datetime":"2022-11-21T09:39:08.470159","author":1,"content":"TestContent","categories":[{"category_id":1,"title":"TestTitle"}]}`
)

type reply struct {
	status int
	body   string
	header http.Header
}

func okJSON(body string) reply {
	return reply{status: http.StatusOK, body: body}
}

func (rep reply) write(w http.ResponseWriter) {
	for k, vs := range rep.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if rep.body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(rep.status)
	io.WriteString(w, rep.body)
}

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fixture is a canned SampleDB API. Routes are "METHOD /path" relative to
// /api/v1; GET /users/me answers with userNils unless overridden.
type fixture struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFixture(t *testing.T, routes map[string]reply) *fixture {
	t.Helper()
	f := &fixture{}

	all := map[string]reply{"GET /users/me": okJSON(userNils)}
	for k, v := range routes {
		all[k] = v
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireBearer)
		for pattern, rep := range all {
			method, path, _ := strings.Cut(pattern, " ")
			r.MethodFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
				rep.write(w)
			})
		}
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api/v1"),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAPIKey {
			reply{status: http.StatusUnauthorized, body: `{"message":"invalid api key"}`}.write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fixture) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *fixture) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fixture) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

func (f *fixture) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

// newClient returns a client authenticated against f with the recorded
// probe request cleared.
func newClient(t *testing.T, f *fixture, opts ...Option) *Client {
	t.Helper()
	c := New(opts...)
	if err := c.Authenticate(context.Background(), f.srv.URL, testAPIKey); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	f.reset()
	return c
}

package sampledb

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestNew_Unauthenticated(t *testing.T) {
	c := New()
	if c.Authenticated() {
		t.Fatal("new client should not be authenticated")
	}
	if c.Address() != "" {
		t.Errorf("address: got %q, want empty", c.Address())
	}

	ctx := context.Background()
	if _, err := c.Users.List(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("List: got %v, want ErrNotAuthenticated", err)
	}
	if _, err := c.Post(ctx, "objects", map[string]any{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Post: got %v, want ErrNotAuthenticated", err)
	}
	if _, err := c.Put(ctx, "objects/1/permissions/public", true); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Put: got %v, want ErrNotAuthenticated", err)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t, nil)
	c := New()

	if err := c.Authenticate(context.Background(), f.srv.URL+"/", testAPIKey); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !c.Authenticated() {
		t.Error("expected authenticated client")
	}
	if c.Address() != f.srv.URL {
		t.Errorf("address: got %q, want %q", c.Address(), f.srv.URL)
	}

	req := f.last(t)
	if req.Method != http.MethodGet || req.Path != "/users/me" {
		t.Errorf("probe: got %s %s, want GET /users/me", req.Method, req.Path)
	}
}

func TestAuthenticate_FailureKeepsSession(t *testing.T) {
	good := newFixture(t, map[string]reply{"GET /users": okJSON("[" + userNils + "]")})
	rejecting := newFixture(t, map[string]reply{
		"GET /users/me": {status: http.StatusUnauthorized, body: `{"message":"nope"}`},
	})

	c := newClient(t, good)
	err := c.Authenticate(context.Background(), rejecting.srv.URL, testAPIKey)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("Authenticate: got %v, want ErrAuthenticationFailed", err)
	}
	if !errors.Is(err, ErrClient) {
		t.Errorf("Authenticate should wrap the probe failure, got %v", err)
	}

	if c.Address() != good.srv.URL {
		t.Errorf("address: got %q, want %q", c.Address(), good.srv.URL)
	}
	users, err := c.Users.List(context.Background())
	if err != nil {
		t.Fatalf("List after failed re-auth: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("users: got %d, want 1", len(users))
	}
	if good.count() != 1 {
		t.Errorf("requests to original server: got %d, want 1", good.count())
	}
}

func TestAuthenticate_WrongKeyKeepsSession(t *testing.T) {
	f := newFixture(t, nil)
	c := newClient(t, f)

	if err := c.Authenticate(context.Background(), f.srv.URL, "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("Authenticate: got %v, want ErrAuthenticationFailed", err)
	}
	if _, err := c.Users.Me(context.Background()); err != nil {
		t.Fatalf("Me with original key: %v", err)
	}
	if got := f.last(t).Header.Get("Authorization"); got != "Bearer "+testAPIKey {
		t.Errorf("authorization: got %q", got)
	}
}

func TestAuthenticate_FailureFromUnauthenticated(t *testing.T) {
	f := newFixture(t, map[string]reply{
		"GET /users/me": {status: http.StatusInternalServerError, body: "boom"},
	})
	c := New()

	err := c.Authenticate(context.Background(), f.srv.URL, testAPIKey)
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("got %v, want ErrAuthenticationFailed", err)
	}
	if !errors.Is(err, ErrServer) {
		t.Errorf("got %v, want wrapped ErrServer", err)
	}
	if c.Authenticated() {
		t.Error("client should stay unauthenticated")
	}
}

func TestAuthenticate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		address string
		key     string
	}{
		{"empty address", "", testAPIKey},
		{"not a url", "sampledb", testAPIKey},
		{"wrong scheme", "ftp://sampledb.example.com", testAPIKey},
		{"empty key", "http://sampledb.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Authenticate(context.Background(), tt.address, tt.key)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	f := newFixture(t, nil)
	c := newClient(t, f, WithUserAgent("sampledb-test/1.0"))

	if _, err := c.Users.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	h := f.last(t).Header
	if got := h.Get("Authorization"); got != "Bearer "+testAPIKey {
		t.Errorf("Authorization: got %q", got)
	}
	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("Accept: got %q", got)
	}
	if got := h.Get("User-Agent"); got != "sampledb-test/1.0" {
		t.Errorf("User-Agent: got %q", got)
	}
	if _, err := uuid.Parse(h.Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID %q is not a uuid: %v", h.Get("X-Request-ID"), err)
	}
}

func TestWithTransport(t *testing.T) {
	f := newFixture(t, nil)
	var seen int
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen++
		return http.DefaultTransport.RoundTrip(r)
	})
	c := newClient(t, f, WithTransport(rt))

	if _, err := c.Users.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	// probe plus one request
	if seen != 2 {
		t.Errorf("round trips: got %d, want 2", seen)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSeparateClientsSeparateSessions(t *testing.T) {
	a := newFixture(t, nil)
	b := newFixture(t, nil)
	ca := newClient(t, a)
	cb := newClient(t, b)

	if _, err := ca.Users.Me(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := cb.Users.Me(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("requests: a=%d b=%d, want 1 each", a.count(), b.count())
	}
}

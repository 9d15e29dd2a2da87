package sampledb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const defaultUserAgent = "go-sampledb"

// session is the authenticated (address, api key) pair used for requests.
type session struct {
	address string
	apiKey  string
}

// Client talks to a single SampleDB instance. A new Client is
// unauthenticated; every request fails with ErrNotAuthenticated until
// Authenticate succeeds. Separate Clients hold separate sessions.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	resolver   Resolver

	authMu  sync.Mutex // serializes Authenticate
	mu      sync.RWMutex
	session *session

	Users         *UsersService
	Actions       *ActionsService
	ActionTypes   *ActionTypesService
	Instruments   *InstrumentsService
	Locations     *LocationsService
	LocationTypes *LocationTypesService
	Objects       *ObjectsService
	ObjectLog     *ObjectLogService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Timeouts set on it
// are the only timeouts applied to requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransport sets the round tripper used by the default HTTP client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Transport = rt
		c.httpClient = &hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger enables debug logging of every request.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithResolver replaces the strategy used to fetch users and locations
// referenced by other entities.
func WithResolver(r Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// New creates an unauthenticated Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Users = &UsersService{client: c}
	c.Actions = &ActionsService{client: c}
	c.ActionTypes = &ActionTypesService{client: c}
	c.Instruments = &InstrumentsService{client: c}
	c.Locations = &LocationsService{client: c}
	c.LocationTypes = &LocationTypesService{client: c}
	c.Objects = &ObjectsService{client: c}
	c.ObjectLog = &ObjectLogService{client: c}

	if c.resolver == nil {
		c.resolver = clientResolver{client: c}
	}
	return c
}

// Authenticate validates the credentials with a GET users/me probe and, on
// success, makes them the active session. On failure the previous session
// (possibly none) stays active and the returned error matches
// ErrAuthenticationFailed.
func (c *Client) Authenticate(ctx context.Context, address, apiKey string) error {
	pending, err := newSession(address, apiKey)
	if err != nil {
		return err
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()

	if _, err := c.get(ctx, pending, "users/me", nil); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	c.mu.Lock()
	c.session = pending
	c.mu.Unlock()

	c.logger.Debug("sampledb session established", "address", pending.address)
	return nil
}

// Authenticated reports whether a session is active.
func (c *Client) Authenticated() bool {
	return c.currentSession() != nil
}

// Address returns the server address of the active session, or "".
func (c *Client) Address() string {
	if s := c.currentSession(); s != nil {
		return s.address
	}
	return ""
}

func (c *Client) currentSession() *session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func newSession(address, apiKey string) (*session, error) {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if address == "" {
		return nil, invalidArgument("server address is empty")
	}
	u, err := url.Parse(address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalidArgument("server address %q is not an http(s) URL", address)
	}
	if apiKey == "" {
		return nil, invalidArgument("api key is empty")
	}
	return &session{address: address, apiKey: apiKey}, nil
}

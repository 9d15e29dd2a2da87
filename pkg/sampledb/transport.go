package sampledb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const apiPrefix = "/api/v1/"

// Response is a fully read POST/PUT confirmation.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the confirmation body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &MalformedResponseError{Body: string(r.Body), Err: err}
	}
	return nil
}

// Get issues GET <address>/api/v1/<path> and returns the JSON body. Only
// 200 and 201 are accepted.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.get(ctx, c.currentSession(), path, query)
}

// Post issues POST <address>/api/v1/<path> with body encoded as JSON. Any
// status below 400 is accepted; the body may be empty.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.send(ctx, http.MethodPost, path, body)
}

// Put is Post with the PUT verb.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.send(ctx, http.MethodPut, path, body)
}

func (c *Client) get(ctx context.Context, s *session, path string, query url.Values) (json.RawMessage, error) {
	resp, err := c.do(ctx, s, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(http.MethodGet, path, resp)
	}

	var probe any
	if err := json.Unmarshal(resp.Body, &probe); err != nil {
		return nil, &MalformedResponseError{Path: path, Body: string(resp.Body), Err: err}
	}
	return json.RawMessage(resp.Body), nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*Response, error) {
	s := c.currentSession()
	if s == nil {
		return nil, ErrNotAuthenticated
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
	}

	resp, err := c.do(ctx, s, method, path, nil, data)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, statusError(method, path, resp)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, s *session, method, path string, query url.Values, body []byte) (*Response, error) {
	if s == nil {
		return nil, ErrNotAuthenticated
	}

	target := s.address + apiPrefix + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s response: %w", ErrTransport, method, path, err)
	}

	c.logger.Debug("sampledb request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func statusError(method, path string, resp *Response) *StatusError {
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

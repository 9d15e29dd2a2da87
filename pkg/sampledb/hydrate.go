package sampledb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Resolver fetches entities that other entities reference by id. Hydration
// calls it once per reference, sequentially, and fails on the first error.
type Resolver interface {
	User(ctx context.Context, userID int) (*User, error)
	Location(ctx context.Context, locationID int) (*Location, error)
}

// clientResolver resolves references with one GET per reference.
type clientResolver struct {
	client *Client
}

func (r clientResolver) User(ctx context.Context, userID int) (*User, error) {
	return r.client.Users.Get(ctx, userID)
}

func (r clientResolver) Location(ctx context.Context, locationID int) (*Location, error) {
	return r.client.Locations.Get(ctx, locationID)
}

// decode unmarshals a success body into T. Keys T does not declare are
// ignored and keys the body lacks leave the zero value.
func decode[T any](path string, raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &MalformedResponseError{Path: path, Body: string(raw), Err: err}
	}
	return v, nil
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	raw, err := c.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	v, err := decode[T](path, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	raw, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decode[[]T](path, raw)
}

// hydrateAll runs fn over every wire element in order.
func hydrateAll[W, T any](ctx context.Context, wires []W, fn func(context.Context, W) (*T, error)) ([]T, error) {
	out := make([]T, 0, len(wires))
	for i, w := range wires {
		v, err := fn(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, *v)
	}
	return out, nil
}

func resolveUser(ctx context.Context, r Resolver, field string, id *int) (*User, error) {
	if id == nil {
		return nil, nil
	}
	u, err := r.User(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %d: %w", field, *id, err)
	}
	return u, nil
}

// TimestampLayout is the wire format of utc_datetime fields on log entries,
// location occurrences and comments.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// parseLayout accepts any fractional precision after the seconds.
const parseLayout = "2006-01-02T15:04:05"

// Timestamp is a UTC instant carried as "YYYY-MM-DDTHH:MM:SS.ffffff".
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses the wire format.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.ParseInLocation(parseLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return Timestamp{Time: t}, nil
}

// String formats the timestamp in the wire format.
func (t Timestamp) String() string {
	return t.Time.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

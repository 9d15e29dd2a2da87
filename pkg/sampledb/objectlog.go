package sampledb

import (
	"context"
	"net/url"
	"strconv"
)

// ObjectLogEntry is one audit trail record. UTCDatetime is kept as sent by
// the server.
type ObjectLogEntry struct {
	LogEntryID  int            `json:"log_entry_id"`
	Type        string         `json:"type"`
	ObjectID    int            `json:"object_id"`
	UserID      int            `json:"user_id"`
	Data        map[string]any `json:"data"`
	UTCDatetime string         `json:"utc_datetime"`
}

type ObjectLogService struct {
	client *Client
}

// List returns the object log entries created after the entry afterID.
// An afterID of zero returns the whole log.
func (s *ObjectLogService) List(ctx context.Context, afterID int) ([]ObjectLogEntry, error) {
	if afterID < 0 {
		return nil, invalidArgument("after_id must not be negative, got %d", afterID)
	}
	var query url.Values
	if afterID > 0 {
		query = url.Values{"after_id": {strconv.Itoa(afterID)}}
	}
	return getList[ObjectLogEntry](ctx, s.client, "object_log_entries", query)
}

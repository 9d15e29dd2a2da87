package sampledb

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// Instrument is a device or facility. Scientists are resolved from the
// instrument_scientists id list when the instrument is fetched.
type Instrument struct {
	InstrumentID int
	Name         string
	Description  string
	IsHidden     bool
	Scientists   []User
}

func (i Instrument) String() string {
	return fmt.Sprintf("Instrument %d (%s)", i.InstrumentID, i.Name)
}

type instrumentWire struct {
	InstrumentID         int    `json:"instrument_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	IsHidden             bool   `json:"is_hidden"`
	InstrumentScientists []int  `json:"instrument_scientists"`
}

// InstrumentLogCategory tags instrument log entries.
type InstrumentLogCategory struct {
	CategoryID int    `json:"category_id"`
	Title      string `json:"title"`
}

// InstrumentLogEntry is one entry in an instrument's log. Author is resolved
// from the author user id.
type InstrumentLogEntry struct {
	LogEntryID   int
	InstrumentID int
	UTCDatetime  Timestamp
	Author       *User
	Content      string
	Categories   []InstrumentLogCategory
}

func (e InstrumentLogEntry) String() string {
	return fmt.Sprintf("InstrumentLogEntry %d (created %s)", e.LogEntryID, e.UTCDatetime)
}

type logEntryWire struct {
	LogEntryID  int                     `json:"log_entry_id"`
	UTCDatetime Timestamp               `json:"utc_datetime"`
	Author      *int                    `json:"author"`
	Content     string                  `json:"content"`
	Categories  []InstrumentLogCategory `json:"categories"`
}

// InstrumentLogFileAttachment is a file attached to a log entry. Content is
// base64 encoded.
type InstrumentLogFileAttachment struct {
	FileAttachmentID int    `json:"file_attachment_id"`
	FileName         string `json:"file_name"`
	Content          string `json:"content"`
}

// Bytes decodes Content.
func (a InstrumentLogFileAttachment) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Content)
}

// InstrumentLogObjectAttachment links a log entry to an object.
type InstrumentLogObjectAttachment struct {
	ObjectAttachmentID int `json:"object_attachment_id"`
	ObjectID           int `json:"object_id"`
}

// LogFile is an in-memory file to attach to a new log entry.
type LogFile struct {
	Name    string
	Content []byte
}

// LogEntryRequest describes a new instrument log entry. Files from
// FilePaths are read fully and base64 encoded before sending.
type LogEntryRequest struct {
	Content     string
	CategoryIDs []int
	FilePaths   []string
	Files       []LogFile
	ObjectIDs   []int
}

type InstrumentsService struct {
	client *Client
}

func (s *InstrumentsService) List(ctx context.Context) ([]Instrument, error) {
	wires, err := getList[instrumentWire](ctx, s.client, "instruments", nil)
	if err != nil {
		return nil, err
	}
	return hydrateAll(ctx, wires, s.hydrate)
}

func (s *InstrumentsService) Get(ctx context.Context, instrumentID int) (*Instrument, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return nil, err
	}
	w, err := getOne[instrumentWire](ctx, s.client, fmt.Sprintf("instruments/%d", instrumentID))
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, *w)
}

func (s *InstrumentsService) hydrate(ctx context.Context, w instrumentWire) (*Instrument, error) {
	inst := &Instrument{
		InstrumentID: w.InstrumentID,
		Name:         w.Name,
		Description:  w.Description,
		IsHidden:     w.IsHidden,
	}
	if w.InstrumentScientists != nil {
		inst.Scientists = make([]User, 0, len(w.InstrumentScientists))
	}
	for _, id := range w.InstrumentScientists {
		u, err := s.client.resolver.User(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("instrument %d: resolve scientist %d: %w", w.InstrumentID, id, err)
		}
		inst.Scientists = append(inst.Scientists, *u)
	}
	return inst, nil
}

// LogEntries returns every log entry of the instrument.
func (s *InstrumentsService) LogEntries(ctx context.Context, instrumentID int) ([]InstrumentLogEntry, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return nil, err
	}
	wires, err := getList[logEntryWire](ctx, s.client, fmt.Sprintf("instruments/%d/log_entries", instrumentID), nil)
	if err != nil {
		return nil, err
	}
	return hydrateAll(ctx, wires, func(ctx context.Context, w logEntryWire) (*InstrumentLogEntry, error) {
		return s.hydrateLogEntry(ctx, instrumentID, w)
	})
}

func (s *InstrumentsService) LogEntry(ctx context.Context, instrumentID, logEntryID int) (*InstrumentLogEntry, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return nil, err
	}
	if err := requireID("log_entry_id", logEntryID); err != nil {
		return nil, err
	}
	w, err := getOne[logEntryWire](ctx, s.client, fmt.Sprintf("instruments/%d/log_entries/%d", instrumentID, logEntryID))
	if err != nil {
		return nil, err
	}
	return s.hydrateLogEntry(ctx, instrumentID, *w)
}

func (s *InstrumentsService) hydrateLogEntry(ctx context.Context, instrumentID int, w logEntryWire) (*InstrumentLogEntry, error) {
	author, err := resolveUser(ctx, s.client.resolver, "author", w.Author)
	if err != nil {
		return nil, fmt.Errorf("log entry %d: %w", w.LogEntryID, err)
	}
	return &InstrumentLogEntry{
		LogEntryID:   w.LogEntryID,
		InstrumentID: instrumentID,
		UTCDatetime:  w.UTCDatetime,
		Author:       author,
		Content:      w.Content,
		Categories:   w.Categories,
	}, nil
}

func (s *InstrumentsService) LogCategories(ctx context.Context, instrumentID int) ([]InstrumentLogCategory, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return nil, err
	}
	return getList[InstrumentLogCategory](ctx, s.client, fmt.Sprintf("instruments/%d/log_categories", instrumentID), nil)
}

func (s *InstrumentsService) LogCategory(ctx context.Context, instrumentID, categoryID int) (*InstrumentLogCategory, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return nil, err
	}
	if err := requireID("category_id", categoryID); err != nil {
		return nil, err
	}
	return getOne[InstrumentLogCategory](ctx, s.client, fmt.Sprintf("instruments/%d/log_categories/%d", instrumentID, categoryID))
}

func (s *InstrumentsService) FileAttachments(ctx context.Context, instrumentID, logEntryID int) ([]InstrumentLogFileAttachment, error) {
	path, err := logEntryPath(instrumentID, logEntryID, "file_attachments")
	if err != nil {
		return nil, err
	}
	return getList[InstrumentLogFileAttachment](ctx, s.client, path, nil)
}

func (s *InstrumentsService) FileAttachment(ctx context.Context, instrumentID, logEntryID, fileAttachmentID int) (*InstrumentLogFileAttachment, error) {
	path, err := logEntryPath(instrumentID, logEntryID, "file_attachments")
	if err != nil {
		return nil, err
	}
	if err := requireID("file_attachment_id", fileAttachmentID); err != nil {
		return nil, err
	}
	return getOne[InstrumentLogFileAttachment](ctx, s.client, fmt.Sprintf("%s/%d", path, fileAttachmentID))
}

func (s *InstrumentsService) ObjectAttachments(ctx context.Context, instrumentID, logEntryID int) ([]InstrumentLogObjectAttachment, error) {
	path, err := logEntryPath(instrumentID, logEntryID, "object_attachments")
	if err != nil {
		return nil, err
	}
	return getList[InstrumentLogObjectAttachment](ctx, s.client, path, nil)
}

func (s *InstrumentsService) ObjectAttachment(ctx context.Context, instrumentID, logEntryID, objectAttachmentID int) (*InstrumentLogObjectAttachment, error) {
	path, err := logEntryPath(instrumentID, logEntryID, "object_attachments")
	if err != nil {
		return nil, err
	}
	if err := requireID("object_attachment_id", objectAttachmentID); err != nil {
		return nil, err
	}
	return getOne[InstrumentLogObjectAttachment](ctx, s.client, fmt.Sprintf("%s/%d", path, objectAttachmentID))
}

// CreateLogEntry posts a new log entry with optional categories and file
// and object attachments.
func (s *InstrumentsService) CreateLogEntry(ctx context.Context, instrumentID int, req LogEntryRequest) (*Response, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return nil, err
	}
	if req.Content == "" {
		return nil, invalidArgument("log entry content is empty")
	}
	for _, id := range req.CategoryIDs {
		if err := requireID("category_id", id); err != nil {
			return nil, err
		}
	}
	for _, id := range req.ObjectIDs {
		if err := requireID("object_id", id); err != nil {
			return nil, err
		}
	}

	body := map[string]any{"content": req.Content}
	if len(req.CategoryIDs) > 0 {
		body["category_ids"] = req.CategoryIDs
	}

	files := make([]map[string]string, 0, len(req.FilePaths)+len(req.Files))
	for _, path := range req.FilePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		files = append(files, fileAttachmentBody(filepath.Base(path), data))
	}
	for _, f := range req.Files {
		if f.Name == "" {
			return nil, invalidArgument("attachment file name is empty")
		}
		files = append(files, fileAttachmentBody(f.Name, f.Content))
	}
	if len(files) > 0 {
		body["file_attachments"] = files
	}

	if len(req.ObjectIDs) > 0 {
		objects := make([]map[string]int, len(req.ObjectIDs))
		for i, id := range req.ObjectIDs {
			objects[i] = map[string]int{"object_id": id}
		}
		body["object_attachments"] = objects
	}

	return s.client.Post(ctx, fmt.Sprintf("instruments/%d/log_entries", instrumentID), body)
}

func fileAttachmentBody(name string, content []byte) map[string]string {
	return map[string]string{
		"file_name":      name,
		"base64_content": base64.StdEncoding.EncodeToString(content),
	}
}

func logEntryPath(instrumentID, logEntryID int, sub string) (string, error) {
	if err := requireID("instrument_id", instrumentID); err != nil {
		return "", err
	}
	if err := requireID("log_entry_id", logEntryID); err != nil {
		return "", err
	}
	return fmt.Sprintf("instruments/%d/log_entries/%d/%s", instrumentID, logEntryID, sub), nil
}

package fakeserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/danielgtaylor/huma/v2"
)

type instrumentPath struct {
	InstrumentID int `path:"instrument_id"`
}

type logEntryPath struct {
	InstrumentID int `path:"instrument_id"`
	LogEntryID   int `path:"log_entry_id"`
}

type logCategoryPath struct {
	InstrumentID int `path:"instrument_id"`
	CategoryID   int `path:"category_id"`
}

type logFilePath struct {
	InstrumentID     int `path:"instrument_id"`
	LogEntryID       int `path:"log_entry_id"`
	FileAttachmentID int `path:"file_attachment_id"`
}

type logObjectPath struct {
	InstrumentID       int `path:"instrument_id"`
	LogEntryID         int `path:"log_entry_id"`
	ObjectAttachmentID int `path:"object_attachment_id"`
}

type logFileUpload struct {
	FileName      string `json:"file_name" minLength:"1"`
	Base64Content string `json:"base64_content"`
}

type logObjectLink struct {
	ObjectID int `json:"object_id"`
}

type logEntryBody struct {
	Content           string          `json:"content" minLength:"1"`
	CategoryIDs       []int           `json:"category_ids,omitempty"`
	FileAttachments   []logFileUpload `json:"file_attachments,omitempty"`
	ObjectAttachments []logObjectLink `json:"object_attachments,omitempty"`
}

type createLogEntryInput struct {
	InstrumentID int `path:"instrument_id"`
	Body         logEntryBody
}

func (s *Server) instrument(id int) (*instrumentState, error) {
	inst, ok := s.db.instruments[id]
	if !ok {
		return nil, huma.Error404NotFound("instrument does not exist")
	}
	return inst, nil
}

func (s *Server) logEntry(instrumentID, logEntryID int) (*logEntryState, error) {
	inst, err := s.instrument(instrumentID)
	if err != nil {
		return nil, err
	}
	for _, e := range inst.entries {
		if e.LogEntryID == logEntryID {
			return e, nil
		}
	}
	return nil, huma.Error404NotFound("log entry does not exist")
}

func (s *Server) registerInstrumentRoutes(hapi huma.API) {
	get(hapi, "list-instruments", "/instruments", func(ctx context.Context, _ *struct{}) (*output[[]Instrument], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([]Instrument, 0, len(s.db.instruments))
		for _, inst := range sortedValues(s.db.instruments) {
			out = append(out, inst.Instrument)
		}
		return reply(out)
	})
	get(hapi, "get-instrument", "/instruments/{instrument_id}", func(ctx context.Context, in *instrumentPath) (*output[Instrument], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		inst, err := s.instrument(in.InstrumentID)
		if err != nil {
			return nil, err
		}
		return reply(inst.Instrument)
	})

	get(hapi, "list-log-categories", "/instruments/{instrument_id}/log_categories", func(ctx context.Context, in *instrumentPath) (*output[[]LogCategory], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		inst, err := s.instrument(in.InstrumentID)
		if err != nil {
			return nil, err
		}
		return reply(slices.Clone(inst.categories))
	})
	get(hapi, "get-log-category", "/instruments/{instrument_id}/log_categories/{category_id}", func(ctx context.Context, in *logCategoryPath) (*output[LogCategory], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		inst, err := s.instrument(in.InstrumentID)
		if err != nil {
			return nil, err
		}
		for _, c := range inst.categories {
			if c.CategoryID == in.CategoryID {
				return reply(c)
			}
		}
		return nil, huma.Error404NotFound("log category does not exist")
	})

	get(hapi, "list-log-entries", "/instruments/{instrument_id}/log_entries", func(ctx context.Context, in *instrumentPath) (*output[[]LogEntry], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		inst, err := s.instrument(in.InstrumentID)
		if err != nil {
			return nil, err
		}
		out := make([]LogEntry, len(inst.entries))
		for i, e := range inst.entries {
			out[i] = e.LogEntry
		}
		return reply(out)
	})
	get(hapi, "get-log-entry", "/instruments/{instrument_id}/log_entries/{log_entry_id}", func(ctx context.Context, in *logEntryPath) (*output[LogEntry], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.logEntry(in.InstrumentID, in.LogEntryID)
		if err != nil {
			return nil, err
		}
		return reply(e.LogEntry)
	})
	post(hapi, "create-log-entry", "/instruments/{instrument_id}/log_entries", s.createLogEntry)

	get(hapi, "list-log-file-attachments", "/instruments/{instrument_id}/log_entries/{log_entry_id}/file_attachments", func(ctx context.Context, in *logEntryPath) (*output[[]LogFileAttachment], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.logEntry(in.InstrumentID, in.LogEntryID)
		if err != nil {
			return nil, err
		}
		return reply(slices.Clone(e.files))
	})
	get(hapi, "get-log-file-attachment", "/instruments/{instrument_id}/log_entries/{log_entry_id}/file_attachments/{file_attachment_id}", func(ctx context.Context, in *logFilePath) (*output[LogFileAttachment], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.logEntry(in.InstrumentID, in.LogEntryID)
		if err != nil {
			return nil, err
		}
		for _, f := range e.files {
			if f.FileAttachmentID == in.FileAttachmentID {
				return reply(f)
			}
		}
		return nil, huma.Error404NotFound("file attachment does not exist")
	})

	get(hapi, "list-log-object-attachments", "/instruments/{instrument_id}/log_entries/{log_entry_id}/object_attachments", func(ctx context.Context, in *logEntryPath) (*output[[]LogObjectAttachment], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.logEntry(in.InstrumentID, in.LogEntryID)
		if err != nil {
			return nil, err
		}
		return reply(slices.Clone(e.objects))
	})
	get(hapi, "get-log-object-attachment", "/instruments/{instrument_id}/log_entries/{log_entry_id}/object_attachments/{object_attachment_id}", func(ctx context.Context, in *logObjectPath) (*output[LogObjectAttachment], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.logEntry(in.InstrumentID, in.LogEntryID)
		if err != nil {
			return nil, err
		}
		for _, o := range e.objects {
			if o.ObjectAttachmentID == in.ObjectAttachmentID {
				return reply(o)
			}
		}
		return nil, huma.Error404NotFound("object attachment does not exist")
	})
}

func (s *Server) createLogEntry(ctx context.Context, in *createLogEntryInput) (*createdOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.instrument(in.InstrumentID)
	if err != nil {
		return nil, err
	}

	entry := &logEntryState{LogEntry: LogEntry{
		LogEntryID:  len(inst.entries) + 1,
		UTCDatetime: s.now().UTC().Format(TimestampLayout),
		Author:      s.userID,
		Content:     in.Body.Content,
		Categories:  []LogCategory{},
	}}

	for _, id := range in.Body.CategoryIDs {
		i := slices.IndexFunc(inst.categories, func(c LogCategory) bool { return c.CategoryID == id })
		if i < 0 {
			return nil, huma.Error400BadRequest(fmt.Sprintf("unknown log category %d", id))
		}
		entry.Categories = append(entry.Categories, inst.categories[i])
	}
	for i, f := range in.Body.FileAttachments {
		if _, err := base64.StdEncoding.DecodeString(f.Base64Content); err != nil {
			return nil, huma.Error400BadRequest(fmt.Sprintf("file attachment %q is not valid base64", f.FileName))
		}
		entry.files = append(entry.files, LogFileAttachment{
			FileAttachmentID: i + 1,
			FileName:         f.FileName,
			Content:          f.Base64Content,
		})
	}
	for i, o := range in.Body.ObjectAttachments {
		if _, ok := s.db.objects[o.ObjectID]; !ok {
			return nil, huma.Error400BadRequest(fmt.Sprintf("object %d does not exist", o.ObjectID))
		}
		entry.objects = append(entry.objects, LogObjectAttachment{ObjectAttachmentID: i + 1, ObjectID: o.ObjectID})
	}

	inst.entries = append(inst.entries, entry)
	return &createdOutput{
		Location: fmt.Sprintf("%s/instruments/%d/log_entries/%d", prefix, inst.InstrumentID, entry.LogEntryID),
	}, nil
}

package fakeserver

import (
	"maps"
	"slices"
	"time"
)

// TimestampLayout matches the utc_datetime format of the real service.
const TimestampLayout = "2006-01-02T15:04:05.000000"

type instrumentState struct {
	Instrument
	categories []LogCategory
	entries    []*logEntryState
}

type logEntryState struct {
	LogEntry
	files   []LogFileAttachment
	objects []LogObjectAttachment
}

type objectState struct {
	versions  []Object
	public    bool
	perms     map[string]map[int]string
	locations []LocationOccurrence
	files     []File
	comments  []Comment
}

func (o *objectState) current() Object {
	return o.versions[len(o.versions)-1]
}

// store is the whole server state. Callers hold Server.mu.
type store struct {
	users         map[int]User
	actions       map[int]Action
	actionTypes   map[int]ActionType
	instruments   map[int]*instrumentState
	locations     map[int]Location
	locationTypes map[int]LocationType
	objects       map[int]*objectState
	objectLog     []ObjectLogEntry
}

func sortedValues[V any](m map[int]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}

func (s *store) nextObjectID() int {
	next := 1
	for id := range s.objects {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func (s *store) appendLog(typ string, objectID, userID int, data map[string]any, now time.Time) {
	if data == nil {
		data = map[string]any{}
	}
	s.objectLog = append(s.objectLog, ObjectLogEntry{
		LogEntryID:  len(s.objectLog) + 1,
		Type:        typ,
		ObjectID:    objectID,
		UserID:      userID,
		Data:        data,
		UTCDatetime: now.UTC().Format(TimestampLayout),
	})
}

func ptr[T any](v T) *T { return &v }

var sampleSchema = map[string]any{
	"title": "Sample Information",
	"type":  "object",
	"properties": map[string]any{
		"name":     map[string]any{"title": "Name", "type": "text"},
		"mass":     map[string]any{"title": "Mass", "type": "quantity", "units": "mg"},
		"active":   map[string]any{"title": "Active", "type": "bool"},
		"prepared": map[string]any{"title": "Prepared", "type": "datetime"},
	},
	"required": []any{"name"},
}

// seed returns the fixture dataset: two users, an instrument with one log
// entry, a location tree and one sample object with a comment, a file and a
// location occurrence.
func seed(now time.Time) *store {
	ts := now.UTC().Format(TimestampLayout)
	s := &store{
		users: map[int]User{
			1: {UserID: 1, Name: "Nils Weber", ORCID: ptr("12345"), Affiliation: ptr("WWU Münster")},
			2: {UserID: 2, Name: "Test User"},
		},
		actionTypes: map[int]ActionType{
			1: {TypeID: 1, Name: "Sample Creation", ObjectName: "Sample", AdminOnly: false},
			2: {TypeID: 2, Name: "Measurement", ObjectName: "Measurement", AdminOnly: false},
		},
		actions: map[int]Action{
			1: {
				ActionID:     1,
				InstrumentID: ptr(1),
				Type:         "sample",
				TypeID:       1,
				Name:         "Example Sample Creation",
				Description:  "Creates a sample",
				Schema:       sampleSchema,
			},
		},
		locationTypes: map[int]LocationType{
			1: {LocationTypeID: 1, Name: "Building"},
			3: {LocationTypeID: 3, Name: "Room"},
		},
		locations: map[int]Location{
			1: {LocationID: 1, Name: "IG1", Description: "IG1", ParentLocationID: ptr(2), TypeID: 3},
			2: {LocationID: 2, Name: "Campus", Description: "Main campus", TypeID: 1},
		},
		objects: map[int]*objectState{},
	}

	cat := LogCategory{CategoryID: 1, Title: "TestTitle"}
	s.instruments = map[int]*instrumentState{
		1: {
			Instrument: Instrument{
				InstrumentID:         1,
				Name:                 "Example Instrument",
				Description:          "An instrument",
				InstrumentScientists: []int{1},
			},
			categories: []LogCategory{cat},
			entries: []*logEntryState{{
				LogEntry: LogEntry{
					LogEntryID:  1,
					UTCDatetime: "2022-11-21T09:39:08.470159",
					Author:      1,
					Content:     "TestContent",
					Categories:  []LogCategory{cat},
				},
				files:   []LogFileAttachment{{FileAttachmentID: 1, FileName: "notes.txt", Content: "aGVsbG8="}},
				objects: []LogObjectAttachment{{ObjectAttachmentID: 1, ObjectID: 1}},
			}},
		},
	}

	s.objects[1] = &objectState{
		versions: []Object{{
			ObjectID:  1,
			VersionID: 0,
			ActionID:  1,
			Schema:    sampleSchema,
			Data: map[string]any{
				"name":     map[string]any{"_type": "text", "text": "Sample A"},
				"mass":     map[string]any{"_type": "quantity", "value": 1.2, "units": "mg"},
				"active":   map[string]any{"_type": "bool", "value": true},
				"prepared": map[string]any{"_type": "datetime", "utc_datetime": "2022-11-21 09:39:08"},
			},
		}},
		perms: map[string]map[int]string{
			"users":    {1: "grant", 2: "read"},
			"groups":   {},
			"projects": {},
		},
		locations: []LocationOccurrence{{
			ObjectID:        1,
			Location:        ptr(1),
			ResponsibleUser: ptr(2),
			User:            ptr(1),
			Description:     "Stored in IG1",
			UTCDatetime:     ts,
		}},
		files: []File{{ObjectID: 1, FileID: 0, Storage: "url", URL: "https://example.com/sample-a"}},
		comments: []Comment{{
			ObjectID:    1,
			UserID:      1,
			CommentID:   1,
			Content:     "First comment",
			UTCDatetime: ts,
		}},
	}
	s.appendLog(LogCreateObject, 1, 1, nil, now)
	return s
}

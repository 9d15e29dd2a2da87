package sampledb

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/ryanbastic/go-sampledb/pkg/sampledb/typedvalue"
)

// Object is one version of a SampleDB object. Data is the raw tagged-value
// tree; Values decodes it.
type Object struct {
	ObjectID  int            `json:"object_id"`
	VersionID int            `json:"version_id"`
	ActionID  int            `json:"action_id"`
	Schema    map[string]any `json:"schema"`
	Data      map[string]any `json:"data"`
}

func (o Object) String() string {
	return fmt.Sprintf("Object %d", o.ObjectID)
}

// Values returns Data with every tagged value decoded.
func (o Object) Values() map[string]any {
	return typedvalue.Convert(o.Data)
}

// ListObjectsOptions filters Objects.List. Zero values are not sent.
type ListObjectsOptions struct {
	// Query is an advanced search expression.
	Query      string
	ActionID   int
	ActionType string
	Limit      int
	Offset     int
	// NameOnly reduces data and schema to the name property.
	NameOnly bool
}

func (o ListObjectsOptions) values() (url.Values, error) {
	if o.ActionID < 0 {
		return nil, invalidArgument("action_id must not be negative, got %d", o.ActionID)
	}
	if o.Limit < 0 {
		return nil, invalidArgument("limit must not be negative, got %d", o.Limit)
	}
	if o.Offset < 0 {
		return nil, invalidArgument("offset must not be negative, got %d", o.Offset)
	}

	q := url.Values{}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if o.ActionID > 0 {
		q.Set("action_id", strconv.Itoa(o.ActionID))
	}
	if o.ActionType != "" {
		q.Set("action_type", o.ActionType)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.NameOnly {
		q.Set("name_only", "true")
	}
	return q, nil
}

// ObjectsService reads and writes objects and everything attached to them.
type ObjectsService struct {
	client *Client
}

// List returns the current version of every object matching opts.
func (s *ObjectsService) List(ctx context.Context, opts ListObjectsOptions) ([]Object, error) {
	query, err := opts.values()
	if err != nil {
		return nil, err
	}
	return getList[Object](ctx, s.client, "objects", query)
}

// Get returns the current version of the object.
func (s *ObjectsService) Get(ctx context.Context, objectID int) (*Object, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	return getOne[Object](ctx, s.client, fmt.Sprintf("objects/%d", objectID))
}

// Version returns a specific version of the object.
func (s *ObjectsService) Version(ctx context.Context, objectID, versionID int) (*Object, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	// version ids start at zero
	if versionID < 0 {
		return nil, invalidArgument("version_id must not be negative, got %d", versionID)
	}
	return getOne[Object](ctx, s.client, fmt.Sprintf("objects/%d/versions/%d", objectID, versionID))
}

// Create posts a new object of the given action. data must follow the
// action's schema.
func (s *ObjectsService) Create(ctx context.Context, actionID int, data map[string]any) (*Response, error) {
	if err := requireID("action_id", actionID); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, invalidArgument("object data is nil")
	}
	return s.client.Post(ctx, "objects", map[string]any{"action_id": actionID, "data": data})
}

// Update posts data as a new version of the object.
func (s *ObjectsService) Update(ctx context.Context, objectID int, data map[string]any) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, invalidArgument("object data is nil")
	}
	return s.client.Post(ctx, fmt.Sprintf("objects/%d/versions", objectID), map[string]any{"data": data})
}

// Resolve fetches the object named by an object_reference value.
func (s *ObjectsService) Resolve(ctx context.Context, ref map[string]any) (*Object, error) {
	id, ok := typedvalue.DecodeObjectReference(ref)
	if !ok {
		return nil, invalidArgument("value is not an object reference")
	}
	return s.Get(ctx, int(id))
}

// CreatedObjectID returns the id in the Location header of a create or
// update confirmation, e.g. ".../objects/5" or ".../objects/5/versions/1".
func CreatedObjectID(resp *Response) (int, bool) {
	if resp == nil {
		return 0, false
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return 0, false
	}
	if u, err := url.Parse(loc); err == nil {
		loc = u.Path
	}
	parts := strings.Split(strings.Trim(path.Clean(loc), "/"), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] != "objects" {
			continue
		}
		id, err := strconv.Atoi(parts[i+1])
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

// LocationOccurrence records that an object was stored at a location.
// Location, ResponsibleUser and User are resolved when fetched.
type LocationOccurrence struct {
	ObjectID        int
	Location        *Location
	ResponsibleUser *User
	User            *User
	Description     string
	UTCDatetime     Timestamp
}

func (o LocationOccurrence) String() string {
	if o.Location == nil {
		return fmt.Sprintf("LocationOccurrence of object %d", o.ObjectID)
	}
	return fmt.Sprintf("LocationOccurrence of object %d (at %s)", o.ObjectID, o.Location.Name)
}

type locationOccurrenceWire struct {
	ObjectID        int       `json:"object_id"`
	Location        *int      `json:"location"`
	ResponsibleUser *int      `json:"responsible_user"`
	User            *int      `json:"user"`
	Description     string    `json:"description"`
	UTCDatetime     Timestamp `json:"utc_datetime"`
}

// LocationOccurrences returns every location assignment of the object.
func (s *ObjectsService) LocationOccurrences(ctx context.Context, objectID int) ([]LocationOccurrence, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	wires, err := getList[locationOccurrenceWire](ctx, s.client, fmt.Sprintf("objects/%d/locations", objectID), nil)
	if err != nil {
		return nil, err
	}
	return hydrateAll(ctx, wires, s.hydrateOccurrence)
}

// LocationOccurrence returns the assignment at index of the object's
// location history.
func (s *ObjectsService) LocationOccurrence(ctx context.Context, objectID, index int) (*LocationOccurrence, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, invalidArgument("location index must not be negative, got %d", index)
	}
	w, err := getOne[locationOccurrenceWire](ctx, s.client, fmt.Sprintf("objects/%d/locations/%d", objectID, index))
	if err != nil {
		return nil, err
	}
	return s.hydrateOccurrence(ctx, *w)
}

func (s *ObjectsService) hydrateOccurrence(ctx context.Context, w locationOccurrenceWire) (*LocationOccurrence, error) {
	r := s.client.resolver
	occ := &LocationOccurrence{
		ObjectID:    w.ObjectID,
		Description: w.Description,
		UTCDatetime: w.UTCDatetime,
	}
	if w.Location != nil {
		loc, err := r.Location(ctx, *w.Location)
		if err != nil {
			return nil, fmt.Errorf("object %d: resolve location %d: %w", w.ObjectID, *w.Location, err)
		}
		occ.Location = loc
	}
	var err error
	if occ.ResponsibleUser, err = resolveUser(ctx, r, "responsible_user", w.ResponsibleUser); err != nil {
		return nil, fmt.Errorf("object %d: %w", w.ObjectID, err)
	}
	if occ.User, err = resolveUser(ctx, r, "user", w.User); err != nil {
		return nil, fmt.Errorf("object %d: %w", w.ObjectID, err)
	}
	return occ, nil
}

// Comment is a comment posted on an object.
type Comment struct {
	ObjectID    int       `json:"object_id"`
	UserID      int       `json:"user_id"`
	CommentID   int       `json:"comment_id"`
	Content     string    `json:"content"`
	UTCDatetime Timestamp `json:"utc_datetime"`
}

func (c Comment) String() string {
	return fmt.Sprintf("Comment on object %d, posted %s", c.ObjectID, c.UTCDatetime)
}

func (s *ObjectsService) Comments(ctx context.Context, objectID int) ([]Comment, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	return getList[Comment](ctx, s.client, fmt.Sprintf("objects/%d/comments", objectID), nil)
}

func (s *ObjectsService) Comment(ctx context.Context, objectID, commentID int) (*Comment, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if err := requireID("comment_id", commentID); err != nil {
		return nil, err
	}
	return getOne[Comment](ctx, s.client, fmt.Sprintf("objects/%d/comments/%d", objectID, commentID))
}

func (s *ObjectsService) PostComment(ctx context.Context, objectID int, content string) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, invalidArgument("comment content is empty")
	}
	return s.client.Post(ctx, fmt.Sprintf("objects/%d/comments", objectID), map[string]string{"content": content})
}

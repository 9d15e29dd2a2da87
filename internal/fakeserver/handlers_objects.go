package fakeserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

type objectPath struct {
	ObjectID int `path:"object_id"`
}

type versionPath struct {
	ObjectID  int `path:"object_id"`
	VersionID int `path:"version_id"`
}

type listObjectsInput struct {
	Q          string `query:"q" doc:"Case-insensitive substring of the object name"`
	ActionID   int    `query:"action_id" minimum:"0"`
	ActionType string `query:"action_type" doc:"Action type name or id"`
	Limit      int    `query:"limit" minimum:"0"`
	Offset     int    `query:"offset" minimum:"0"`
	NameOnly   bool   `query:"name_only"`
}

type createObjectBody struct {
	ActionID int            `json:"action_id" minimum:"1"`
	Data     map[string]any `json:"data"`
}

type createObjectInput struct {
	Body createObjectBody
}

type updateObjectBody struct {
	Data map[string]any `json:"data"`
}

type updateObjectInput struct {
	ObjectID int `path:"object_id"`
	Body     updateObjectBody
}

type objectLogInput struct {
	AfterID int `query:"after_id" minimum:"0"`
}

func (s *Server) object(id int) (*objectState, error) {
	o, ok := s.db.objects[id]
	if !ok {
		return nil, huma.Error404NotFound("object does not exist")
	}
	return o, nil
}

func objectName(o Object) string {
	name, _ := o.Data["name"].(map[string]any)
	text, _ := name["text"].(string)
	return text
}

func (s *Server) matches(o Object, in *listObjectsInput) bool {
	if in.ActionID > 0 && o.ActionID != in.ActionID {
		return false
	}
	if in.ActionType != "" {
		a := s.db.actions[o.ActionID]
		if a.Type != in.ActionType && strconv.Itoa(a.TypeID) != in.ActionType {
			return false
		}
	}
	if in.Q != "" && !strings.Contains(strings.ToLower(objectName(o)), strings.ToLower(in.Q)) {
		return false
	}
	return true
}

func (s *Server) registerObjectRoutes(hapi huma.API) {
	get(hapi, "list-objects", "/objects", func(ctx context.Context, in *listObjectsInput) (*output[[]Object], error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		out := []Object{}
		for _, o := range sortedValues(s.db.objects) {
			cur := o.current()
			if !s.matches(cur, in) {
				continue
			}
			if in.NameOnly {
				cur = Object{
					ObjectID:  cur.ObjectID,
					VersionID: cur.VersionID,
					ActionID:  cur.ActionID,
					Data:      map[string]any{"name": cur.Data["name"]},
				}
			}
			out = append(out, cur)
		}

		if in.Offset >= len(out) {
			out = []Object{}
		} else {
			out = out[in.Offset:]
		}
		if in.Limit > 0 && in.Limit < len(out) {
			out = out[:in.Limit]
		}
		return reply(out)
	})
	get(hapi, "get-object", "/objects/{object_id}", func(ctx context.Context, in *objectPath) (*output[Object], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		return reply(o.current())
	})
	get(hapi, "get-object-version", "/objects/{object_id}/versions/{version_id}", func(ctx context.Context, in *versionPath) (*output[Object], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		o, err := s.object(in.ObjectID)
		if err != nil {
			return nil, err
		}
		if in.VersionID < 0 || in.VersionID >= len(o.versions) {
			return nil, huma.Error404NotFound("object version does not exist")
		}
		return reply(o.versions[in.VersionID])
	})
	post(hapi, "create-object", "/objects", s.createObject)
	post(hapi, "update-object", "/objects/{object_id}/versions", s.updateObject)

	get(hapi, "list-object-log-entries", "/object_log_entries", func(ctx context.Context, in *objectLogInput) (*output[[]ObjectLogEntry], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := []ObjectLogEntry{}
		for _, e := range s.db.objectLog {
			if e.LogEntryID > in.AfterID {
				out = append(out, e)
			}
		}
		return reply(out)
	})
}

func (s *Server) createObject(ctx context.Context, in *createObjectInput) (*createdOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.db.actions[in.Body.ActionID]
	if !ok {
		return nil, huma.Error400BadRequest(fmt.Sprintf("action %d does not exist", in.Body.ActionID))
	}

	id := s.db.nextObjectID()
	s.db.objects[id] = &objectState{
		versions: []Object{{
			ObjectID: id,
			ActionID: action.ActionID,
			Schema:   action.Schema,
			Data:     in.Body.Data,
		}},
		perms: map[string]map[int]string{
			"users":    {s.userID: "grant"},
			"groups":   {},
			"projects": {},
		},
	}
	s.db.appendLog(LogCreateObject, id, s.userID, nil, s.now())
	s.logger.Debug("object created", "object_id", id, "action_id", action.ActionID)

	return &createdOutput{Location: fmt.Sprintf("%s/objects/%d", prefix, id)}, nil
}

func (s *Server) updateObject(ctx context.Context, in *updateObjectInput) (*createdOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.object(in.ObjectID)
	if err != nil {
		return nil, err
	}
	prev := o.current()
	next := Object{
		ObjectID:  prev.ObjectID,
		VersionID: len(o.versions),
		ActionID:  prev.ActionID,
		Schema:    prev.Schema,
		Data:      in.Body.Data,
	}
	o.versions = append(o.versions, next)
	s.db.appendLog(LogEditObject, next.ObjectID, s.userID, map[string]any{"version_id": next.VersionID}, s.now())

	return &createdOutput{
		Location: fmt.Sprintf("%s/objects/%d/versions/%d", prefix, next.ObjectID, next.VersionID),
	}, nil
}

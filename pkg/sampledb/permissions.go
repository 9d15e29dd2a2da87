package sampledb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Permission is a permission level such as "read" or "write". The server
// defines the vocabulary; the client passes it through.
type Permission string

type principal string

const (
	principalUsers    principal = "users"
	principalGroups   principal = "groups"
	principalProjects principal = "projects"
)

// Public reports whether the object is readable by everyone.
func (s *ObjectsService) Public(ctx context.Context, objectID int) (bool, error) {
	if err := requireID("object_id", objectID); err != nil {
		return false, err
	}
	p := fmt.Sprintf("objects/%d/permissions/public", objectID)
	raw, err := s.client.Get(ctx, p, nil)
	if err != nil {
		return false, err
	}
	return decode[bool](p, raw)
}

func (s *ObjectsService) SetPublic(ctx context.Context, objectID int, public bool) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	return s.client.Put(ctx, fmt.Sprintf("objects/%d/permissions/public", objectID), public)
}

// UserPermissions maps user ids to their permission on the object.
func (s *ObjectsService) UserPermissions(ctx context.Context, objectID int) (map[int]Permission, error) {
	return s.permissions(ctx, objectID, principalUsers)
}

func (s *ObjectsService) UserPermission(ctx context.Context, objectID, userID int) (Permission, error) {
	return s.permission(ctx, objectID, principalUsers, userID)
}

func (s *ObjectsService) SetUserPermission(ctx context.Context, objectID, userID int, perm Permission) (*Response, error) {
	return s.setPermission(ctx, objectID, principalUsers, userID, perm)
}

// GroupPermissions maps basic group ids to their permission on the object.
func (s *ObjectsService) GroupPermissions(ctx context.Context, objectID int) (map[int]Permission, error) {
	return s.permissions(ctx, objectID, principalGroups)
}

func (s *ObjectsService) GroupPermission(ctx context.Context, objectID, groupID int) (Permission, error) {
	return s.permission(ctx, objectID, principalGroups, groupID)
}

func (s *ObjectsService) SetGroupPermission(ctx context.Context, objectID, groupID int, perm Permission) (*Response, error) {
	return s.setPermission(ctx, objectID, principalGroups, groupID, perm)
}

// ProjectPermissions maps project group ids to their permission on the object.
func (s *ObjectsService) ProjectPermissions(ctx context.Context, objectID int) (map[int]Permission, error) {
	return s.permissions(ctx, objectID, principalProjects)
}

func (s *ObjectsService) ProjectPermission(ctx context.Context, objectID, projectID int) (Permission, error) {
	return s.permission(ctx, objectID, principalProjects, projectID)
}

func (s *ObjectsService) SetProjectPermission(ctx context.Context, objectID, projectID int, perm Permission) (*Response, error) {
	return s.setPermission(ctx, objectID, principalProjects, projectID, perm)
}

func (s *ObjectsService) permissions(ctx context.Context, objectID int, kind principal) (map[int]Permission, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	p := fmt.Sprintf("objects/%d/permissions/%s", objectID, kind)
	raw, err := s.client.Get(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	byKey, err := decode[map[string]Permission](p, raw)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Permission, len(byKey))
	for k, v := range byKey {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, &MalformedResponseError{Path: p, Body: string(raw), Err: fmt.Errorf("principal id %q: %w", k, err)}
		}
		out[id] = v
	}
	return out, nil
}

func (s *ObjectsService) permission(ctx context.Context, objectID int, kind principal, principalID int) (Permission, error) {
	if err := requireID("object_id", objectID); err != nil {
		return "", err
	}
	if err := requireID(string(kind)+" id", principalID); err != nil {
		return "", err
	}
	p := fmt.Sprintf("objects/%d/permissions/%s/%d", objectID, kind, principalID)
	raw, err := s.client.Get(ctx, p, nil)
	if err != nil {
		return "", err
	}
	var perm Permission
	if err := json.Unmarshal(raw, &perm); err != nil {
		return "", &MalformedResponseError{Path: p, Body: string(raw), Err: err}
	}
	return perm, nil
}

func (s *ObjectsService) setPermission(ctx context.Context, objectID int, kind principal, principalID int, perm Permission) (*Response, error) {
	if err := requireID("object_id", objectID); err != nil {
		return nil, err
	}
	if err := requireID(string(kind)+" id", principalID); err != nil {
		return nil, err
	}
	if perm == "" {
		return nil, invalidArgument("permission is empty")
	}
	return s.client.Put(ctx, fmt.Sprintf("objects/%d/permissions/%s/%d", objectID, kind, principalID), perm)
}

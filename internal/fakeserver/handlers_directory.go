package fakeserver

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type userPath struct {
	UserID int `path:"user_id"`
}

type actionPath struct {
	ActionID int `path:"action_id"`
}

type actionTypePath struct {
	TypeID int `path:"type_id"`
}

type locationPath struct {
	LocationID int `path:"location_id"`
}

type locationTypePath struct {
	LocationTypeID int `path:"location_type_id"`
}

func (s *Server) registerDirectoryRoutes(hapi huma.API) {
	get(hapi, "list-users", "/users", func(ctx context.Context, _ *struct{}) (*output[[]User], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return reply(sortedValues(s.db.users))
	})
	get(hapi, "get-current-user", "/users/me", func(ctx context.Context, _ *struct{}) (*output[User], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return reply(s.db.users[s.userID])
	})
	get(hapi, "get-user", "/users/{user_id}", func(ctx context.Context, in *userPath) (*output[User], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		u, ok := s.db.users[in.UserID]
		if !ok {
			return nil, huma.Error404NotFound("user does not exist")
		}
		return reply(u)
	})

	get(hapi, "list-actions", "/actions", func(ctx context.Context, _ *struct{}) (*output[[]Action], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return reply(sortedValues(s.db.actions))
	})
	get(hapi, "get-action", "/actions/{action_id}", func(ctx context.Context, in *actionPath) (*output[Action], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		a, ok := s.db.actions[in.ActionID]
		if !ok {
			return nil, huma.Error404NotFound("action does not exist")
		}
		return reply(a)
	})

	get(hapi, "list-action-types", "/action_types", func(ctx context.Context, _ *struct{}) (*output[[]ActionType], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return reply(sortedValues(s.db.actionTypes))
	})
	get(hapi, "get-action-type", "/action_types/{type_id}", func(ctx context.Context, in *actionTypePath) (*output[ActionType], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, ok := s.db.actionTypes[in.TypeID]
		if !ok {
			return nil, huma.Error404NotFound("action type does not exist")
		}
		return reply(t)
	})

	get(hapi, "list-locations", "/locations", func(ctx context.Context, _ *struct{}) (*output[[]Location], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return reply(sortedValues(s.db.locations))
	})
	get(hapi, "get-location", "/locations/{location_id}", func(ctx context.Context, in *locationPath) (*output[Location], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		l, ok := s.db.locations[in.LocationID]
		if !ok {
			return nil, huma.Error404NotFound("location does not exist")
		}
		return reply(l)
	})

	get(hapi, "list-location-types", "/location_types", func(ctx context.Context, _ *struct{}) (*output[[]LocationType], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return reply(sortedValues(s.db.locationTypes))
	})
	get(hapi, "get-location-type", "/location_types/{location_type_id}", func(ctx context.Context, in *locationTypePath) (*output[LocationType], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, ok := s.db.locationTypes[in.LocationTypeID]
		if !ok {
			return nil, huma.Error404NotFound("location type does not exist")
		}
		return reply(t)
	})
}

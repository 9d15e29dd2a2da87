package sampledb

import (
	"context"
	"fmt"
)

// Action describes how objects of one kind are created. Schema is the JSON
// Schema document object data must follow.
type Action struct {
	ActionID     int            `json:"action_id"`
	InstrumentID int            `json:"instrument_id"`
	Type         string         `json:"type"`
	TypeID       int            `json:"type_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	IsHidden     bool           `json:"is_hidden"`
	Schema       map[string]any `json:"schema"`
}

func (a Action) String() string {
	return fmt.Sprintf("Action %d (%s)", a.ActionID, a.Name)
}

// ActionsService reads actions.
type ActionsService struct {
	client *Client
}

func (s *ActionsService) List(ctx context.Context) ([]Action, error) {
	return getList[Action](ctx, s.client, "actions", nil)
}

func (s *ActionsService) Get(ctx context.Context, actionID int) (*Action, error) {
	if err := requireID("action_id", actionID); err != nil {
		return nil, err
	}
	return getOne[Action](ctx, s.client, fmt.Sprintf("actions/%d", actionID))
}

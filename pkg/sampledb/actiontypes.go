package sampledb

import (
	"context"
	"fmt"
)

// ActionType classifies actions, e.g. sample creation or measurement.
type ActionType struct {
	TypeID     int    `json:"type_id"`
	Name       string `json:"name"`
	ObjectName string `json:"object_name"`
	AdminOnly  bool   `json:"admin_only"`
}

func (t ActionType) String() string {
	return fmt.Sprintf("ActionType %d (%s)", t.TypeID, t.Name)
}

type ActionTypesService struct {
	client *Client
}

func (s *ActionTypesService) List(ctx context.Context) ([]ActionType, error) {
	return getList[ActionType](ctx, s.client, "action_types", nil)
}

func (s *ActionTypesService) Get(ctx context.Context, typeID int) (*ActionType, error) {
	if err := requireID("type_id", typeID); err != nil {
		return nil, err
	}
	return getOne[ActionType](ctx, s.client, fmt.Sprintf("action_types/%d", typeID))
}

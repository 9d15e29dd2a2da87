package sampledb

import (
	"context"
	"fmt"
)

// Location is a node in the location tree. ParentLocationID is zero for
// roots.
type Location struct {
	LocationID       int    `json:"location_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ParentLocationID int    `json:"parent_location_id"`
	TypeID           int    `json:"type_id"`
	IsHidden         bool   `json:"is_hidden"`
}

func (l Location) String() string {
	return fmt.Sprintf("Location %d (%s)", l.LocationID, l.Name)
}

type LocationsService struct {
	client *Client
}

func (s *LocationsService) List(ctx context.Context) ([]Location, error) {
	return getList[Location](ctx, s.client, "locations", nil)
}

func (s *LocationsService) Get(ctx context.Context, locationID int) (*Location, error) {
	if err := requireID("location_id", locationID); err != nil {
		return nil, err
	}
	return getOne[Location](ctx, s.client, fmt.Sprintf("locations/%d", locationID))
}

// LocationType classifies locations, e.g. room or freezer.
type LocationType struct {
	LocationTypeID int    `json:"location_type_id"`
	Name           string `json:"name"`
}

func (t LocationType) String() string {
	return fmt.Sprintf("LocationType %d (%s)", t.LocationTypeID, t.Name)
}

type LocationTypesService struct {
	client *Client
}

func (s *LocationTypesService) List(ctx context.Context) ([]LocationType, error) {
	return getList[LocationType](ctx, s.client, "location_types", nil)
}

func (s *LocationTypesService) Get(ctx context.Context, locationTypeID int) (*LocationType, error) {
	if err := requireID("location_type_id", locationTypeID); err != nil {
		return nil, err
	}
	return getOne[LocationType](ctx, s.client, fmt.Sprintf("location_types/%d", locationTypeID))
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// FollowerStatus is the progress of an object log follower.
type FollowerStatus struct {
	Name           string `json:"name" doc:"Checkpoint name" example:"sampledb-follow"`
	LastLogEntryID int    `json:"last_log_entry_id" doc:"Id of the last handled object log entry"`
	Handlers       int    `json:"handlers" doc:"Number of registered entry handlers"`
	Breaker        string `json:"breaker" doc:"Circuit breaker state" example:"closed"`
}

// FollowerStatusFunc reports the current follower status. It is called from
// request goroutines.
type FollowerStatusFunc func() FollowerStatus

type FollowerStatusOutput struct {
	Body FollowerStatus
}

func registerFollowerRoutes(api huma.API, status FollowerStatusFunc) {
	huma.Register(api, huma.Operation{
		OperationID: "get-follower-status",
		Method:      http.MethodGet,
		Path:        "/v1/follower",
		Summary:     "Get object log follower progress",
		Tags:        []string{"follower"},
	}, func(ctx context.Context, _ *struct{}) (*FollowerStatusOutput, error) {
		return &FollowerStatusOutput{Body: status()}, nil
	})
}

package sampledb

import (
	"context"
	"fmt"
)

// User is a SampleDB account.
type User struct {
	UserID      int    `json:"user_id"`
	Name        string `json:"name"`
	ORCID       string `json:"orcid"`
	Affiliation string `json:"affiliation"`
}

func (u User) String() string {
	return fmt.Sprintf("User %d (%s)", u.UserID, u.Name)
}

// UsersService reads users.
type UsersService struct {
	client *Client
}

// List returns every user visible to the session.
func (s *UsersService) List(ctx context.Context) ([]User, error) {
	return getList[User](ctx, s.client, "users", nil)
}

// Get returns the user with the given id.
func (s *UsersService) Get(ctx context.Context, userID int) (*User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return getOne[User](ctx, s.client, fmt.Sprintf("users/%d", userID))
}

// Me returns the user that owns the session's api key.
func (s *UsersService) Me(ctx context.Context) (*User, error) {
	return getOne[User](ctx, s.client, "users/me")
}

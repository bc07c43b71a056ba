package domain

import "context"

// User is a registered platform user. Users are managed by the user service;
// admission only needs to resolve them.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRepository defines read access to users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

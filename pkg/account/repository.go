package account

import (
	"context"
	"errors"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserRepository abstracts persistence concerns from the domain layer.
// Implementations may be in-memory, SQL, NoSQL, etc.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
}

package account

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGitHub AuthProvider = "github"
)

// User is a domain entity representing a registered account.
// PasswordHash is empty only for externally-authenticated accounts;
// such accounts cannot log in with a password.
type User struct {
	ID           uuid.UUID
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	GitHubID     string
	AvatarURL    string
	Provider     AuthProvider
	CreatedAt    time.Time
}

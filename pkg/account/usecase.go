package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UseCase describes registration, authentication and listing behavior.
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (User, error)
	Login(ctx context.Context, username, password string) (LoginResult, error)
	List(ctx context.Context) ([]User, error)
}

type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

type LoginResult struct {
	User        User
	AccessToken string
}

type accountService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewService returns default implementation of UseCase.
func NewService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer) UseCase {
	return &accountService{repo: repo, hasher: hasher, tokens: tokens}
}

func (s *accountService) Register(ctx context.Context, in RegisterInput) (User, error) {
	// Fail fast on a taken username; the unique constraint in the store
	// still closes the race between this check and the insert.
	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return User{}, ErrUsernameTaken
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New(),
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: digest,
		Provider:     ProviderLocal,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *accountService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	// Externally-authenticated accounts carry no digest.
	if user.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, AccessToken: token}, nil
}

func (s *accountService) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

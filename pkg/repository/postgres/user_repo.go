package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/artem13815/accounts/pkg/account"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements account.UserRepository backed by PostgreSQL (pgx).
type UserRepository struct {
	db DB
}

func NewUserRepository(ctx context.Context, db DB) (*UserRepository, error) {
	repo := &UserRepository{db: db}
	if err := repo.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *UserRepository) ensureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			fullname TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			github_id TEXT UNIQUE,
			avatar_url TEXT,
			auth_provider TEXT NOT NULL DEFAULT 'local',
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (r *UserRepository) Create(ctx context.Context, user account.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, fullname, email, password_hash, github_id, avatar_url, auth_provider, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, user.ID, user.Username, user.FullName, user.Email,
		nullable(user.PasswordHash), nullable(user.GitHubID), nullable(user.AvatarURL),
		string(user.Provider), user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (account.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, fullname, email, password_hash, github_id, avatar_url, auth_provider, created_at
		FROM users WHERE username = $1
	`, username)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]account.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, fullname, email, password_hash, github_id, avatar_url, auth_provider, created_at
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []account.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (account.User, error) {
	var (
		user      account.User
		digest    *string
		githubID  *string
		avatarURL *string
		provider  string
		createdAt time.Time
	)
	err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.Email,
		&digest, &githubID, &avatarURL, &provider, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.User{}, account.ErrNotFound
		}
		return account.User{}, err
	}
	if digest != nil {
		user.PasswordHash = *digest
	}
	if githubID != nil {
		user.GitHubID = *githubID
	}
	if avatarURL != nil {
		user.AvatarURL = *avatarURL
	}
	user.Provider = account.AuthProvider(provider)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

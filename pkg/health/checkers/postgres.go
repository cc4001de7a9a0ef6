package checkers

import (
	"context"
	"time"
)

// Pinger is the single pool method the checker needs; *pgxpool.Pool
// satisfies it, and so do test stubs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PostgresChecker struct {
	db Pinger
}

func NewPostgresChecker(db Pinger) *PostgresChecker {
	return &PostgresChecker{db: db}
}

func (c *PostgresChecker) Name() string { return "postgres" }

func (c *PostgresChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.db.Ping(ctx)
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectRetries       = 5
	connectRetryInterval = 5 * time.Second
)

// ConnectDB opens a pgx pool and pings it, retrying while the database comes up.
func ConnectDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	for i := 0; i < connectRetries; i++ {
		pool, err = pgxpool.New(ctx, databaseURL)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.Info("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		log.Warn("database not reachable", "attempt", i+1, "of", connectRetries, "retry_in", connectRetryInterval, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", connectRetries, err)
}

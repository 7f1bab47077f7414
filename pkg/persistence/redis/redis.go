// Package redis provides Redis-backed persistence for automators. Each
// automator is a JSON value under automator:{id}; a per-team set indexes the
// team's automator ids for listing.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/guidely/automator/pkg/persistence"
)

// Persistence implements persistence.Persistence on Redis.
type Persistence struct {
	client        *goredis.Client
	automatorRepo *AutomatorRepository
}

// NewPersistence connects to Redis using a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:        client,
		automatorRepo: NewAutomatorRepository(client, logger),
	}, nil
}

// AutomatorRepository returns the automator repository.
func (p *Persistence) AutomatorRepository() persistence.AutomatorRepository {
	return p.automatorRepo
}

// HealthCheck pings the Redis server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the client connection pool.
func (p *Persistence) Close(_ context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// Package cmd provides shared construction helpers for command entry points.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guidely/automator/pkg/persistence"
	"github.com/guidely/automator/pkg/persistence/file"
	"github.com/guidely/automator/pkg/persistence/postgresql"
	"github.com/guidely/automator/pkg/persistence/redis"
)

// NewPersistence selects a storage backend from the database URL scheme:
// postgres://, redis://, or a file path (optionally file://) for local
// development.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres persistence: %w", err)
		}

		return p, nil
	case "redis", "rediss":
		p, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL, logger), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}

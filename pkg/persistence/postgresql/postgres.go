// Package postgresql provides PostgreSQL persistence for automators.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/guidely/automator/pkg/persistence"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	automatorRepo *AutomatorRepository
}

// NewPersistence connects, runs migrations and returns a PostgreSQL
// persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	postgres := &Persistence{
		db:            database,
		logger:        logger,
		automatorRepo: NewAutomatorRepository(database, logger),
	}

	if err := postgres.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// AutomatorRepository returns the automator repository.
func (p *Persistence) AutomatorRepository() persistence.AutomatorRepository {
	return p.automatorRepo
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

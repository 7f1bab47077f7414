package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guidely/automator/pkg/definition"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence"
)

// AutomatorRepository handles automator-related database operations. The
// definition document lives in a JSONB column and is screened on read so a
// corrupt document degrades to an empty graph instead of a load failure.
type AutomatorRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAutomatorRepository creates a new automator repository.
func NewAutomatorRepository(db *sql.DB, logger *slog.Logger) *AutomatorRepository {
	return &AutomatorRepository{db: db, logger: logger}
}

const automatorColumns = `
	id
  , team_id
  , name
  , description
  , status
  , definition
  , created_by
  , updated_by
  , created_at
  , updated_at
`

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

// ListAutomators returns paginated and filtered automators.
func (r *AutomatorRepository) ListAutomators(ctx context.Context, opts persistence.ListAutomatorsOptions) (*persistence.AutomatorListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder != "asc" {
		opts.SortOrder = "desc"
	}

	sortColumn, ok := sortColumns[opts.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	where := "WHERE deleted_at IS NULL"
	args := []any{}

	if opts.TeamID != "" {
		args = append(args, opts.TeamID)
		where += fmt.Sprintf(" AND team_id = $%d", len(args))
	}

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var totalCount int64

	countQuery := "SELECT COUNT(*) FROM automators " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count automators: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM automators %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		automatorColumns, where, sortColumn, opts.SortOrder, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query automators: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automators := make([]*models.Automator, 0)

	for rows.Next() {
		automator, err := r.scanAutomator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automator: %w", err)
		}

		automators = append(automators, automator)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automators: %w", err)
	}

	return &persistence.AutomatorListResult{
		Automators:  automators,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(automators)) < totalCount,
	}, nil
}

// GetByID returns an automator by its id, nil when absent.
func (r *AutomatorRepository) GetByID(ctx context.Context, id string) (*models.Automator, error) {
	query := "SELECT " + automatorColumns + " FROM automators WHERE id = $1 AND deleted_at IS NULL"

	automator, err := r.scanAutomator(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewAutomatorError("GetByID", id, err)
	}

	return automator, nil
}

// Save upserts the automator, overwriting the stored definition.
func (r *AutomatorRepository) Save(ctx context.Context, automator *models.Automator) error {
	now := time.Now().UTC()
	if automator.CreatedAt.IsZero() {
		automator.CreatedAt = now
	}

	automator.UpdatedAt = now

	rawDef, err := definition.Encode(automator.Definition)
	if err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, err)
	}

	query := `
		INSERT INTO automators (id, team_id, name, description, status, definition, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			team_id = EXCLUDED.team_id
		  , name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , status = EXCLUDED.status
		  , definition = EXCLUDED.definition
		  , updated_by = EXCLUDED.updated_by
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		automator.ID,
		automator.TeamID,
		automator.Name,
		automator.Description,
		string(automator.Status),
		rawDef,
		automator.CreatedBy,
		automator.UpdatedBy,
		automator.CreatedAt,
		automator.UpdatedAt,
	)
	if err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, err)
	}

	return nil
}

// Delete soft deletes an automator by setting its deleted_at timestamp.
func (r *AutomatorRepository) Delete(ctx context.Context, id string) error {
	query := "UPDATE automators SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL"

	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return persistence.NewAutomatorError("Delete", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AutomatorRepository) scanAutomator(row rowScanner) (*models.Automator, error) {
	var (
		automator models.Automator
		status    string
		rawDef    []byte
	)

	err := row.Scan(
		&automator.ID,
		&automator.TeamID,
		&automator.Name,
		&automator.Description,
		&status,
		&rawDef,
		&automator.CreatedBy,
		&automator.UpdatedBy,
		&automator.CreatedAt,
		&automator.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	automator.Status = models.AutomatorStatus(status)
	automator.Definition, automator.DefinitionRecovered = definition.DecodeLenient(rawDef, r.logger, automator.ID)

	return &automator, nil
}

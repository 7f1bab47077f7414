package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/guidely/automator/pkg/definition"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence"
)

const (
	automatorKeyPrefix = "automator:"
	teamIndexPrefix    = "automators:team:"
	allIndexKey        = "automators:all"
)

// AutomatorRepository stores automators as JSON values with set-based team
// indexes.
type AutomatorRepository struct {
	client *goredis.Client
	logger *slog.Logger
}

// NewAutomatorRepository creates a Redis-backed automator repository.
func NewAutomatorRepository(client *goredis.Client, logger *slog.Logger) *AutomatorRepository {
	return &AutomatorRepository{client: client, logger: logger}
}

// storedAutomator keeps the definition raw so a malformed document can be
// recovered instead of failing the read.
type storedAutomator struct {
	ID          string                 `json:"id"`
	TeamID      string                 `json:"team_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Status      models.AutomatorStatus `json:"status"`
	Definition  json.RawMessage        `json:"definition"`
	CreatedBy   string                 `json:"created_by"`
	UpdatedBy   string                 `json:"updated_by"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ListAutomators returns paginated and filtered automators. Filtering and
// sorting happen in memory over the indexed ids.
func (ar *AutomatorRepository) ListAutomators(ctx context.Context, opts persistence.ListAutomatorsOptions) (*persistence.AutomatorListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	indexKey := allIndexKey
	if opts.TeamID != "" {
		indexKey = teamIndexPrefix + opts.TeamID
	}

	ids, err := ar.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read automator index: %w", err)
	}

	filtered := make([]*models.Automator, 0, len(ids))

	for _, id := range ids {
		automator, err := ar.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if automator == nil {
			continue
		}

		if opts.Status != nil && automator.Status != *opts.Status {
			continue
		}

		filtered = append(filtered, automator)
	}

	ar.sortAutomators(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))
	startIdx := opts.Offset
	endIdx := opts.Offset + opts.Limit

	if startIdx >= len(filtered) {
		return &persistence.AutomatorListResult{
			Automators:  make([]*models.Automator, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &persistence.AutomatorListResult{
		Automators:  filtered[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

func (ar *AutomatorRepository) sortAutomators(automators []*models.Automator, sortBy, sortOrder string) {
	sort.Slice(automators, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "updated_at":
			less = automators[i].UpdatedAt.Before(automators[j].UpdatedAt)
		case "name":
			less = automators[i].Name < automators[j].Name
		default:
			less = automators[i].CreatedAt.Before(automators[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}

// GetByID returns an automator by its id, nil when absent. A malformed
// stored definition is replaced with an empty graph and flagged.
func (ar *AutomatorRepository) GetByID(ctx context.Context, id string) (*models.Automator, error) {
	body, err := ar.client.Get(ctx, automatorKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		return nil, persistence.NewAutomatorError("GetByID", id, err)
	}

	var stored storedAutomator

	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, persistence.NewAutomatorError("GetByID", id, fmt.Errorf("failed to unmarshal automator: %w", err))
	}

	def, recovered := definition.DecodeLenient(stored.Definition, ar.logger, id)

	return &models.Automator{
		ID:                  stored.ID,
		TeamID:              stored.TeamID,
		Name:                stored.Name,
		Description:         stored.Description,
		Status:              stored.Status,
		Definition:          def,
		CreatedBy:           stored.CreatedBy,
		UpdatedBy:           stored.UpdatedBy,
		CreatedAt:           stored.CreatedAt,
		UpdatedAt:           stored.UpdatedAt,
		DefinitionRecovered: recovered,
	}, nil
}

// Save writes the automator value and maintains the team indexes.
func (ar *AutomatorRepository) Save(ctx context.Context, automator *models.Automator) error {
	now := time.Now().UTC()
	if automator.CreatedAt.IsZero() {
		automator.CreatedAt = now
	}

	automator.UpdatedAt = now

	rawDef, err := definition.Encode(automator.Definition)
	if err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, err)
	}

	stored := storedAutomator{
		ID:          automator.ID,
		TeamID:      automator.TeamID,
		Name:        automator.Name,
		Description: automator.Description,
		Status:      automator.Status,
		Definition:  rawDef,
		CreatedBy:   automator.CreatedBy,
		UpdatedBy:   automator.UpdatedBy,
		CreatedAt:   automator.CreatedAt,
		UpdatedAt:   automator.UpdatedAt,
	}

	body, err := json.Marshal(stored)
	if err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, fmt.Errorf("failed to marshal automator: %w", err))
	}

	pipe := ar.client.TxPipeline()
	pipe.Set(ctx, automatorKeyPrefix+automator.ID, body, 0)
	pipe.SAdd(ctx, allIndexKey, automator.ID)
	pipe.SAdd(ctx, teamIndexPrefix+automator.TeamID, automator.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, err)
	}

	return nil
}

// Delete removes the automator value and its index entries. Deleting an
// absent automator is a no-op.
func (ar *AutomatorRepository) Delete(ctx context.Context, id string) error {
	automator, err := ar.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if automator == nil {
		return nil
	}

	pipe := ar.client.TxPipeline()
	pipe.Del(ctx, automatorKeyPrefix+id)
	pipe.SRem(ctx, allIndexKey, id)
	pipe.SRem(ctx, teamIndexPrefix+automator.TeamID, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewAutomatorError("Delete", id, err)
	}

	return nil
}

package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/guidely/automator/pkg/definition"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence"
)

// AutomatorRepository stores automators as JSON files under root/automators.
type AutomatorRepository struct {
	root   string
	logger *slog.Logger
}

// NewAutomatorRepository creates a file-backed automator repository.
func NewAutomatorRepository(root string, logger *slog.Logger) *AutomatorRepository {
	return &AutomatorRepository{root: root, logger: logger}
}

// storedAutomator is the on-disk envelope. The definition is kept raw so a
// malformed document can be recovered instead of failing the whole read.
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
	DeletedAt   *time.Time             `json:"deleted_at,omitempty"`
}

// ListAutomators returns paginated and filtered automators with in-memory
// filtering and sorting.
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

	root := os.DirFS(path.Join(ar.root, "automators"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list automator files: %w", err)
	}

	filtered := make([]*models.Automator, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		automatorID := file[:len(file)-5] // Remove .json extension

		automator, err := ar.GetByID(ctx, automatorID)
		if err != nil {
			return nil, fmt.Errorf("failed to load automator %s: %w", automatorID, err)
		}

		if automator == nil {
			continue
		}

		if opts.TeamID != "" && automator.TeamID != opts.TeamID {
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

// GetByID retrieves an automator by its id. A malformed stored definition is
// replaced with an empty graph and flagged on the returned entity so the
// editor stays usable.
func (ar *AutomatorRepository) GetByID(_ context.Context, automatorID string) (*models.Automator, error) {
	filePath := filepath.Clean(path.Join(ar.root, "automators", automatorID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, persistence.NewAutomatorError("GetByID", automatorID, err)
	}

	var stored storedAutomator

	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, persistence.NewAutomatorError("GetByID", automatorID, fmt.Errorf("failed to unmarshal automator: %w", err))
	}

	if stored.DeletedAt != nil {
		return nil, nil
	}

	def, recovered := definition.DecodeLenient(stored.Definition, ar.logger, automatorID)

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

// Save writes the automator to disk, overwriting any previous document.
func (ar *AutomatorRepository) Save(_ context.Context, automator *models.Automator) error {
	dir := path.Join(ar.root, "automators")

	if err := os.MkdirAll(dir, 0750); err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, fmt.Errorf("failed to create automators directory: %w", err))
	}

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
		DeletedAt:   automator.DeletedAt,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, fmt.Errorf("failed to marshal automator: %w", err))
	}

	filePath := path.Join(dir, automator.ID+".json")

	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return persistence.NewAutomatorError("Save", automator.ID, err)
	}

	return nil
}

// Delete removes an automator file. Deleting an absent automator is a no-op.
func (ar *AutomatorRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(ar.root, "automators", id+".json")

	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return persistence.NewAutomatorError("Delete", id, err)
	}

	return nil
}

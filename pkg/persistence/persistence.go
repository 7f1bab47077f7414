// Package persistence provides the data storage abstraction for automators.
package persistence

import (
	"context"

	"github.com/guidely/automator/pkg/models"
)

// ListAutomatorsOptions controls filtering, sorting and pagination when
// listing automators.
type ListAutomatorsOptions struct {
	Limit  int
	Offset int

	TeamID string
	Status *models.AutomatorStatus

	SortBy    string // created_at, updated_at, name
	SortOrder string // asc, desc
}

// AutomatorListResult is a page of automators plus pagination metadata.
type AutomatorListResult struct {
	Automators  []*models.Automator `json:"automators"`
	TotalCount  int64               `json:"total_count"`
	HasNextPage bool                `json:"has_next_page"`
}

// AutomatorRepository is the durable store for automator entities. GetByID
// returns (nil, nil) when the id is unknown. Implementations must recover a
// malformed stored definition by substituting an empty graph and setting
// DefinitionRecovered on the returned entity instead of failing the load.
type AutomatorRepository interface {
	ListAutomators(ctx context.Context, opts ListAutomatorsOptions) (*AutomatorListResult, error)
	GetByID(ctx context.Context, id string) (*models.Automator, error)
	Save(ctx context.Context, automator *models.Automator) error
	Delete(ctx context.Context, id string) error
}

// Persistence is the storage backend boundary.
type Persistence interface {
	AutomatorRepository() AutomatorRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

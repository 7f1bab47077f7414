// Package services implements the automator application services over the
// persistence boundary.
package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence"
)

// ErrAutomatorNotFound is returned when an automator is not found.
var ErrAutomatorNotFound = persistence.ErrAutomatorNotFound

// Automator is the application service for automator entities and their
// definitions.
type Automator struct {
	persistence persistence.Persistence
}

// NewAutomator creates a new automator service.
func NewAutomator(persistence persistence.Persistence) *Automator {
	return &Automator{
		persistence: persistence,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Automator) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListAutomatorsRequest contains options for listing automators.
type ListAutomatorsRequest struct {
	Limit  int
	Offset int

	TeamID string
	Status *models.AutomatorStatus

	SortBy    string
	SortOrder string
}

// ListAutomators retrieves automators with filtering, sorting and pagination.
// Used by the surrounding listing UI.
func (s *Automator) ListAutomators(ctx context.Context, req ListAutomatorsRequest) (*persistence.AutomatorListResult, error) {
	if err := s.validateListRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	opts := persistence.ListAutomatorsOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		TeamID:    req.TeamID,
		Status:    req.Status,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	result, err := s.persistence.AutomatorRepository().ListAutomators(ctx, opts)
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list automators: %w", err)
	}

	return result, nil
}

func (s *Automator) validateListRequest(req *ListAutomatorsRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	allowedSorts := []string{"created_at", "updated_at", "name"}
	if !slices.Contains(allowedSorts, req.SortBy) {
		return NewValidationError(
			"validateListRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field %q, allowed: %s", req.SortBy, strings.Join(allowedSorts, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order %q, allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.Status != nil {
		allowedStatuses := []models.AutomatorStatus{
			models.AutomatorStatusDraft,
			models.AutomatorStatusPublished,
		}

		if !slices.Contains(allowedStatuses, *req.Status) {
			return NewValidationError(
				"validateListRequest",
				"INVALID_STATUS",
				fmt.Sprintf("invalid status %q", *req.Status),
				ErrInvalidStatus,
			)
		}
	}

	return nil
}

// FetchByID retrieves an automator by its id.
func (s *Automator) FetchByID(ctx context.Context, id string) (*models.Automator, error) {
	automator, err := s.persistence.AutomatorRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if automator == nil {
		return nil, ErrAutomatorNotFound
	}

	return automator, nil
}

// Create adds a new draft automator with an empty definition.
func (s *Automator) Create(ctx context.Context, automator *models.Automator) (*models.Automator, error) {
	if strings.TrimSpace(automator.TeamID) == "" {
		return nil, ErrEmptyTeamID
	}

	now := time.Now().UTC()
	automator.ID = uuid.New().String()
	automator.Status = models.AutomatorStatusDraft
	automator.Definition = models.EmptyDefinition()
	automator.UpdatedBy = automator.CreatedBy
	automator.CreatedAt = now
	automator.UpdatedAt = now

	if err := s.persistence.AutomatorRepository().Save(ctx, automator); err != nil {
		return nil, fmt.Errorf("failed to create automator: %w", err)
	}

	return automator, nil
}

// Update modifies an automator's name and description.
func (s *Automator) Update(ctx context.Context, id string, name, description *string, actorID string) (*models.Automator, error) {
	existing, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		existing.Name = *name
	}

	if description != nil {
		existing.Description = *description
	}

	existing.UpdatedBy = actorID
	existing.UpdatedAt = time.Now().UTC()

	if err := s.persistence.AutomatorRepository().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update automator: %w", err)
	}

	return existing, nil
}

// SaveDefinition overwrites the stored definition unconditionally and bumps
// the updater and timestamp. There is no optimistic-concurrency check: two
// editors saving the same automator race and the last write wins.
func (s *Automator) SaveDefinition(ctx context.Context, id string, def models.Definition, actorID string) (*models.Automator, error) {
	existing, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Definition = def
	existing.DefinitionRecovered = false
	existing.UpdatedBy = actorID
	existing.UpdatedAt = time.Now().UTC()

	if err := s.persistence.AutomatorRepository().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to save definition: %w", err)
	}

	return existing, nil
}

// Delete removes an automator.
func (s *Automator) Delete(ctx context.Context, id string) error {
	existing, err := s.persistence.AutomatorRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrAutomatorNotFound
	}

	return s.persistence.AutomatorRepository().Delete(ctx, id)
}

// Automator publishing: the draft/publish lifecycle with the validation gate.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/guidely/automator/pkg/graph"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence"
)

// Publishing handles the automator draft/publish lifecycle. There is no
// version history: publishing exposes whatever definition was last saved, and
// publishing again after further saves simply republishes the latest
// snapshot.
type Publishing struct {
	persistence persistence.Persistence
}

// NewPublishing creates a new publishing service.
func NewPublishing(persistence persistence.Persistence) *Publishing {
	return &Publishing{
		persistence: persistence,
	}
}

// Publish validates the saved definition and flips the automator to
// published. An invalid graph blocks the publish with the itemized issue
// list so the author can fix each problem.
func (p *Publishing) Publish(ctx context.Context, automatorID, actorID string) (*models.Automator, error) {
	automator, err := p.fetch(ctx, automatorID)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDefinition(automator.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition for validation: %w", err)
	}

	if result := g.Validate(); !result.Valid {
		return nil, &ValidationFailedError{AutomatorID: automatorID, Issues: result.Errors}
	}

	return p.setStatus(ctx, automator, models.AutomatorStatusPublished, actorID)
}

// Unpublish flips the automator back to draft. Always permitted.
func (p *Publishing) Unpublish(ctx context.Context, automatorID, actorID string) (*models.Automator, error) {
	automator, err := p.fetch(ctx, automatorID)
	if err != nil {
		return nil, err
	}

	return p.setStatus(ctx, automator, models.AutomatorStatusDraft, actorID)
}

// Validate runs the publish gate without changing anything, so the editor
// can surface problems before the author reaches for the publish button.
func (p *Publishing) Validate(ctx context.Context, automatorID string) (graph.ValidationResult, error) {
	automator, err := p.fetch(ctx, automatorID)
	if err != nil {
		return graph.ValidationResult{}, err
	}

	g, err := graph.FromDefinition(automator.Definition)
	if err != nil {
		return graph.ValidationResult{}, fmt.Errorf("failed to load definition for validation: %w", err)
	}

	return g.Validate(), nil
}

func (p *Publishing) fetch(ctx context.Context, automatorID string) (*models.Automator, error) {
	automator, err := p.persistence.AutomatorRepository().GetByID(ctx, automatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get automator: %w", err)
	}

	if automator == nil {
		return nil, ErrAutomatorNotFound
	}

	return automator, nil
}

func (p *Publishing) setStatus(ctx context.Context, automator *models.Automator, status models.AutomatorStatus, actorID string) (*models.Automator, error) {
	automator.Status = status
	automator.UpdatedBy = actorID
	automator.UpdatedAt = time.Now().UTC()

	if err := p.persistence.AutomatorRepository().Save(ctx, automator); err != nil {
		return nil, fmt.Errorf("failed to save automator status: %w", err)
	}

	return automator, nil
}

// Package models defines the core domain models for guided process automators.
package models

import "time"

// AutomatorStatus represents the lifecycle state of an automator.
type AutomatorStatus string

const (
	AutomatorStatusDraft     AutomatorStatus = "draft"     // Editable, not yet live
	AutomatorStatusPublished AutomatorStatus = "published" // Live definition, walked by guidance tooling
)

// Automator is the persisted workflow definition entity. There is exactly one
// live definition per automator: every save overwrites Definition, publish
// re-exposes whatever was last saved.
type Automator struct {
	ID          string          `json:"id"`
	TeamID      string          `json:"team_id"                validate:"required"`
	Name        string          `json:"name"                   validate:"required,min=3"`
	Description string          `json:"description,omitempty"`
	Status      AutomatorStatus `json:"status"                 validate:"required,oneof=draft published"`
	Definition  Definition      `json:"definition"`
	CreatedBy   string          `json:"created_by"`
	UpdatedBy   string          `json:"updated_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`

	// DefinitionRecovered is set by the persistence layer when the stored
	// definition was malformed and an empty graph was substituted so the
	// editor stays usable. Never persisted.
	DefinitionRecovered bool `json:"-"`
}

// IsPublished reports whether the automator's definition is live.
func (a *Automator) IsPublished() bool {
	return a.Status == AutomatorStatusPublished
}

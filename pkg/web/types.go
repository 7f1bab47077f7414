// HTTP request and response types for the automator API.
package web

import "github.com/guidely/automator/pkg/models"

// CreateAutomatorRequest is the body for creating a new automator. The
// surrounding platform supplies the acting user's id; this API trusts it.
type CreateAutomatorRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
	TeamID      string `json:"team_id"     validate:"required"`
	ActorID     string `json:"actor_id"    validate:"required"`
}

// UpdateAutomatorRequest is the body for renaming or re-describing an
// automator. Fields are optional to support partial updates.
type UpdateAutomatorRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string `json:"description,omitempty"`
	ActorID     string  `json:"actor_id"              validate:"required"`
}

// SaveDefinitionRequest is the body for overwriting an automator's stored
// definition with the editor's current graph.
type SaveDefinitionRequest struct {
	Definition models.Definition `json:"definition"`
	ActorID    string            `json:"actor_id"   validate:"required"`
}

// LifecycleRequest is the body for publish and unpublish.
type LifecycleRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

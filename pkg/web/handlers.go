// Package web provides the HTTP endpoints for automator management: CRUD,
// definition save, and the draft/publish lifecycle.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/guidely/automator/pkg/eventbus"
	"github.com/guidely/automator/pkg/events"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/services"
)

// APIHandlers bundles the automator API endpoints and their dependencies.
type APIHandlers struct {
	automatorService  *services.Automator
	publishingService *services.Publishing
	validator         *validator.Validate
	eventBus          eventbus.EventBus
	logger            *slog.Logger
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(
	automatorService *services.Automator,
	publishingService *services.Publishing,
	validator *validator.Validate,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		automatorService:  automatorService,
		publishingService: publishingService,
		validator:         validator,
		eventBus:          eventBus,
		logger:            logger,
	}
}

// GetAutomators lists automators for a team with pagination and sorting.
func (h *APIHandlers) GetAutomators(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.automatorService.ListAutomators(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"automators":    result.Automators,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

func (h *APIHandlers) parseListRequest(c fiber.Ctx) (*services.ListAutomatorsRequest, error) {
	req := &services.ListAutomatorsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.TeamID = c.Query("team_id")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.AutomatorStatus(statusStr)
		req.Status = &status
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

// GetAutomator fetches a single automator with its stored definition.
func (h *APIHandlers) GetAutomator(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	automator, err := h.automatorService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(automator)
}

// CreateAutomator creates a new draft automator with an empty definition.
func (h *APIHandlers) CreateAutomator(c fiber.Ctx) error {
	var req CreateAutomatorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	automator := &models.Automator{
		Name:        req.Name,
		Description: req.Description,
		TeamID:      req.TeamID,
		CreatedBy:   req.ActorID,
	}

	created, err := h.automatorService.Create(c.Context(), automator)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateAutomator renames or re-describes an automator.
func (h *APIHandlers) UpdateAutomator(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	var req UpdateAutomatorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.automatorService.Update(c.Context(), id, req.Name, req.Description, req.ActorID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// DeleteAutomator removes an automator.
func (h *APIHandlers) DeleteAutomator(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	if err := h.automatorService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SaveDefinition overwrites the stored definition with the editor's current
// graph. No optimistic-concurrency check: last write wins.
func (h *APIHandlers) SaveDefinition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	var req SaveDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid definition document: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.automatorService.SaveDefinition(c.Context(), id, req.Definition, req.ActorID)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c.Context(), events.AutomatorSaved{
		BaseEvent: h.baseEvent(events.AutomatorSavedEvent, saved, req.ActorID),
		NodeCount: len(saved.Definition.Nodes),
		EdgeCount: len(saved.Definition.Edges),
	})

	return c.JSON(saved)
}

// ValidateAutomator runs the publish gate without publishing.
func (h *APIHandlers) ValidateAutomator(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	result, err := h.publishingService.Validate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// PublishAutomator validates the saved definition and flips the automator to
// published.
func (h *APIHandlers) PublishAutomator(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	var req LifecycleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	published, err := h.publishingService.Publish(c.Context(), id, req.ActorID)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c.Context(), events.AutomatorPublished{
		BaseEvent: h.baseEvent(events.AutomatorPublishedEvent, published, req.ActorID),
	})

	return c.JSON(published)
}

// UnpublishAutomator flips the automator back to draft.
func (h *APIHandlers) UnpublishAutomator(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Automator ID is required")
	}

	var req LifecycleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	unpublished, err := h.publishingService.Unpublish(c.Context(), id, req.ActorID)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c.Context(), events.AutomatorUnpublished{
		BaseEvent: h.baseEvent(events.AutomatorUnpublishedEvent, unpublished, req.ActorID),
	})

	return c.JSON(unpublished)
}

// HealthCheck reports persistence health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.automatorService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) baseEvent(eventType events.EventType, automator *models.Automator, actorID string) events.BaseEvent {
	return events.BaseEvent{
		ID:          h.eventBus.GenerateID(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AutomatorID: automator.ID,
		TeamID:      automator.TeamID,
		ActorID:     actorID,
	}
}

// publishEvent emits a lifecycle event best-effort; a bus failure never fails
// the request that already persisted.
func (h *APIHandlers) publishEvent(ctx context.Context, event eventbus.Event) {
	if h.eventBus == nil {
		return
	}

	var key string

	switch e := event.(type) {
	case events.AutomatorSaved:
		key = e.AutomatorID
	case events.AutomatorPublished:
		key = e.AutomatorID
	case events.AutomatorUnpublished:
		key = e.AutomatorID
	}

	if err := h.eventBus.Publish(ctx, key, event); err != nil {
		h.logger.Error("failed to publish lifecycle event", "event_type", event.GetType(), "error", err)
	}
}

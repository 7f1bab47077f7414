package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/guidely/automator/pkg/channels/gochannel"
	"github.com/guidely/automator/pkg/eventbus"
	"github.com/guidely/automator/pkg/events"
	"github.com/guidely/automator/pkg/graph"
	"github.com/guidely/automator/pkg/mocks"
	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence/file"
	"github.com/guidely/automator/pkg/services"
	"github.com/guidely/automator/pkg/testutil"
	"github.com/guidely/automator/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *services.Automator, eventbus.EventBus) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir(), slog.Default())
	automatorService := services.NewAutomator(persistence)
	publishingService := services.NewPublishing(persistence)

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(slog.Default()))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(automatorService, publishingService, validate, bus, slog.Default())

	app := fiber.New()

	automators := app.Group("/automators")
	automators.Get("/", handlers.GetAutomators)
	automators.Post("/", handlers.CreateAutomator)
	automators.Get("/:id", handlers.GetAutomator)
	automators.Patch("/:id", handlers.UpdateAutomator)
	automators.Delete("/:id", handlers.DeleteAutomator)
	automators.Put("/:id/definition", handlers.SaveDefinition)
	automators.Get("/:id/validate", handlers.ValidateAutomator)
	automators.Post("/:id/publish", handlers.PublishAutomator)
	automators.Post("/:id/unpublish", handlers.UnpublishAutomator)
	app.Get("/health", handlers.HealthCheck)

	return app, automatorService, bus
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body []byte

	switch v := payload.(type) {
	case nil:
	case string:
		body = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		require.NoError(t, err)

		body = encoded
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

func createAutomator(t *testing.T, app *fiber.App) models.Automator {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/automators", web.CreateAutomatorRequest{
		Name:    "Refund flow",
		TeamID:  "team-1",
		ActorID: "user-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var automator models.Automator

	require.NoError(t, json.Unmarshal(body, &automator))

	return automator
}

func TestCreateAutomator(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name: "successful creation",
			requestBody: web.CreateAutomatorRequest{
				Name:        "Refund flow",
				Description: "Handles refunds",
				TeamID:      "team-1",
				ActorID:     "user-1",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "name too short",
			requestBody: web.CreateAutomatorRequest{
				Name:    "ab",
				TeamID:  "team-1",
				ActorID: "user-1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing team",
			requestBody: web.CreateAutomatorRequest{
				Name:    "Refund flow",
				ActorID: "user-1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/automators", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var automator models.Automator

				require.NoError(t, json.Unmarshal(body, &automator))
				assert.NotEmpty(t, automator.ID)
				assert.Equal(t, models.AutomatorStatusDraft, automator.Status)
				assert.Empty(t, automator.Definition.Nodes)
			}
		})
	}
}

func TestGetAutomator(t *testing.T) {
	app, _, _ := setupTestApp(t)

	created := createAutomator(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/automators/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded models.Automator

	require.NoError(t, json.Unmarshal(body, &loaded))
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, "Refund flow", loaded.Name)
}

func TestGetAutomator_NotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/automators/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetAutomators_ListAndFilter(t *testing.T) {
	app, _, _ := setupTestApp(t)

	first := createAutomator(t, app)
	createAutomator(t, app)

	resp, _ := doJSON(t, app, http.MethodPost, "/automators/"+first.ID+"/publish", web.LifecycleRequest{ActorID: "user-1"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "an empty draft must not publish")

	resp, body := doJSON(t, app, http.MethodGet, "/automators/?team_id=team-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Automators  []models.Automator `json:"automators"`
		TotalCount  int64              `json:"total_count"`
		HasNextPage bool               `json:"has_next_page"`
	}

	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, int64(2), listing.TotalCount)
	assert.Len(t, listing.Automators, 2)

	resp, _ = doJSON(t, app, http.MethodGet, "/automators/?status=published", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/automators/?sort_by=definition", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/automators/?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAutomator(t *testing.T) {
	app, _, _ := setupTestApp(t)

	created := createAutomator(t, app)

	newName := "Renamed flow"

	resp, body := doJSON(t, app, http.MethodPatch, "/automators/"+created.ID, web.UpdateAutomatorRequest{
		Name:    &newName,
		ActorID: "user-2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Automator

	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Renamed flow", updated.Name)
	assert.Equal(t, "user-2", updated.UpdatedBy)
}

func TestDeleteAutomator(t *testing.T) {
	app, _, _ := setupTestApp(t)

	created := createAutomator(t, app)

	resp, _ := doJSON(t, app, http.MethodDelete, "/automators/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/automators/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/automators/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveDefinition_PersistsAndEmitsEvent(t *testing.T) {
	app, _, bus := setupTestApp(t)

	created := createAutomator(t, app)

	received := make(chan any, 1)
	require.NoError(t, bus.Handle(events.AutomatorSavedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	}))
	require.NoError(t, bus.Subscribe(context.Background()))

	resp, body := doJSON(t, app, http.MethodPut, "/automators/"+created.ID+"/definition", web.SaveDefinitionRequest{
		Definition: testutil.CreateValidDefinition(),
		ActorID:    "user-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved models.Automator

	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Len(t, saved.Definition.Nodes, 5)
	assert.Len(t, saved.Definition.Edges, 4)

	select {
	case event := <-received:
		savedEvent, ok := event.(*events.AutomatorSaved)
		require.True(t, ok)
		assert.Equal(t, created.ID, savedEvent.AutomatorID)
		assert.Equal(t, 5, savedEvent.NodeCount)
		assert.Equal(t, 4, savedEvent.EdgeCount)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an automator.saved event")
	}
}

func TestValidateAutomator_Endpoint(t *testing.T) {
	app, _, _ := setupTestApp(t)

	created := createAutomator(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/automators/"+created.ID+"/validate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result graph.ValidationResult

	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestPublishLifecycle(t *testing.T) {
	app, _, _ := setupTestApp(t)

	created := createAutomator(t, app)

	resp, _ := doJSON(t, app, http.MethodPut, "/automators/"+created.ID+"/definition", web.SaveDefinitionRequest{
		Definition: testutil.CreateValidDefinition(),
		ActorID:    "user-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/automators/"+created.ID+"/publish", web.LifecycleRequest{ActorID: "user-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var published models.Automator

	require.NoError(t, json.Unmarshal(body, &published))
	assert.Equal(t, models.AutomatorStatusPublished, published.Status)

	resp, body = doJSON(t, app, http.MethodPost, "/automators/"+created.ID+"/unpublish", web.LifecycleRequest{ActorID: "user-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var unpublished models.Automator

	require.NoError(t, json.Unmarshal(body, &unpublished))
	assert.Equal(t, models.AutomatorStatusDraft, unpublished.Status)
}

func TestPublishAutomator_InvalidGraphReturnsIssueList(t *testing.T) {
	app, _, _ := setupTestApp(t)

	created := createAutomator(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/automators/"+created.ID+"/publish", web.LifecycleRequest{ActorID: "user-1"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var problem struct {
		Type   string        `json:"type"`
		Errors []graph.Issue `json:"errors"`
	}

	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "definition_invalid", problem.Type)
	assert.NotEmpty(t, problem.Errors)
}

func TestSaveDefinition_BusFailureDoesNotFailRequest(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir(), slog.Default())
	automatorService := services.NewAutomator(persistence)
	publishingService := services.NewPublishing(persistence)

	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("event-1")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(automatorService, publishingService, validate, bus, slog.Default())

	app := fiber.New()
	app.Post("/automators", handlers.CreateAutomator)
	app.Put("/automators/:id/definition", handlers.SaveDefinition)

	created := createAutomator(t, app)

	resp, _ := doJSON(t, app, http.MethodPut, "/automators/"+created.ID+"/definition", web.SaveDefinitionRequest{
		Definition: testutil.CreateValidDefinition(),
		ActorID:    "user-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bus.AssertCalled(t, "Publish", mock.Anything, created.ID, mock.Anything)
}

func TestHealthCheck(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}

	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
}

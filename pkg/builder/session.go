// Package builder provides the stateful editing session wrapping one
// automator's graph for interactive use.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/guidely/automator/pkg/graph"
	"github.com/guidely/automator/pkg/models"
)

// State is the session's position in the dirty/save cycle.
type State string

const (
	// StateClean means the graph matches the last-saved snapshot.
	StateClean State = "clean"
	// StateDirty means local mutations are pending a save.
	StateDirty State = "dirty"
	// StateSaving means a save is in flight. Edits are still accepted and
	// ride the next save.
	StateSaving State = "saving"
)

// ErrSaveInFlight is returned when Save is called while an earlier save has
// not completed. Saves for the same automator are never issued concurrently.
var ErrSaveInFlight = errors.New("a save is already in flight")

// ErrNoAutomator is returned when an operation requires a loaded automator.
var ErrNoAutomator = errors.New("no automator loaded")

// Store is the slice of the persistence layer a session needs: fetching the
// entity and overwriting its definition.
type Store interface {
	FetchByID(ctx context.Context, id string) (*models.Automator, error)
	SaveDefinition(ctx context.Context, id string, def models.Definition, actorID string) (*models.Automator, error)
}

// Session owns the live, mutable graph for one automator while it is being
// edited. Construct one per hosted editor; it is not process-wide state.
//
// Graph-model errors surfaced through the mutation methods are programming
// contract violations from well-formed canvas input: the session logs them
// and leaves the graph untouched, and also returns them for callers that
// want to assert in tests.
type Session struct {
	mu sync.Mutex

	store   Store
	logger  *slog.Logger
	actorID string

	automatorID       string
	graph             *graph.Graph
	selected          string
	state             State
	editedWhileSaving bool
}

// NewSession creates an empty session for the given actor. Load brings in an
// automator's graph.
func NewSession(store Store, logger *slog.Logger, actorID string) *Session {
	return &Session{
		store:   store,
		logger:  logger,
		actorID: actorID,
		graph:   graph.New(),
		state:   StateClean,
	}
}

// Load fetches an automator and replaces the session's graph with its stored
// definition, discarding any unsaved edits and the selection, and resets the
// session to Clean. A malformed stored definition has already been recovered
// to an empty graph by the persistence layer.
func (s *Session) Load(ctx context.Context, automatorID string) (*models.Automator, error) {
	automator, err := s.store.FetchByID(ctx, automatorID)
	if err != nil {
		return nil, fmt.Errorf("load automator %s: %w", automatorID, err)
	}

	g, err := graph.FromDefinition(automator.Definition)
	if err != nil {
		// The persistence layer screens definitions on load, so this is
		// unexpected; keep the editor usable anyway.
		s.logger.Warn("stored definition did not load; starting from an empty graph",
			"automator_id", automatorID, "error", err)

		g = graph.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.automatorID = automatorID
	s.graph = g
	s.selected = ""
	s.state = StateClean
	s.editedWhileSaving = false

	return automator, nil
}

// State returns the session's current editing state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// AutomatorID returns the id of the loaded automator, empty when none.
func (s *Session) AutomatorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.automatorID
}

// Definition projects the current graph into its serializable document form.
func (s *Session) Definition() models.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.graph.ToDefinition()
}

// Validate runs the publish gate against the current graph.
func (s *Session) Validate() graph.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.graph.Validate()
}

// SelectNode records the selected node id (empty to clear). Selection is pure
// navigation and never dirties the session.
func (s *Session) SelectNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nodeID != "" && s.graph.Node(nodeID) == nil {
		err := &graph.Error{Op: "SelectNode", NodeID: nodeID, Err: graph.ErrNodeNotFound}
		s.logger.Error("ignoring selection of unknown node", "node_id", nodeID)

		return err
	}

	s.selected = nodeID

	return nil
}

// SelectedNode returns the currently selected node id, empty when none.
func (s *Session) SelectedNode() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected
}

// AddNode inserts a node and dirties the session.
func (s *Session) AddNode(t models.NodeType, pos models.Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.AddNode(t, pos)
	if err != nil {
		s.logger.Error("add node rejected", "type", t, "error", err)

		return "", err
	}

	s.markDirty()

	return id, nil
}

// UpdateNodeData merges a payload patch into a node and dirties the session.
func (s *Session) UpdateNodeData(nodeID string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.UpdateNodeData(nodeID, patch); err != nil {
		s.logger.Error("node data update rejected", "node_id", nodeID, "error", err)

		return err
	}

	s.markDirty()

	return nil
}

// MoveNode updates a node's position and dirties the session.
func (s *Session) MoveNode(nodeID string, pos models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.MoveNode(nodeID, pos); err != nil {
		s.logger.Error("node move rejected", "node_id", nodeID, "error", err)

		return err
	}

	s.markDirty()

	return nil
}

// DeleteNode removes a node with its incident edges, clears the selection if
// it pointed at the node, and dirties the session.
func (s *Session) DeleteNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.DeleteNode(nodeID); err != nil {
		s.logger.Error("node delete rejected", "node_id", nodeID, "error", err)

		return err
	}

	if s.selected == nodeID {
		s.selected = ""
	}

	s.markDirty()

	return nil
}

// Connect creates an edge and dirties the session.
func (s *Session) Connect(source, sourceHandle, target, targetHandle string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.Connect(source, sourceHandle, target, targetHandle)
	if err != nil {
		s.logger.Error("connect rejected", "source", source, "handle", sourceHandle, "error", err)

		return "", err
	}

	s.markDirty()

	return id, nil
}

// DeleteEdge removes an edge and dirties the session.
func (s *Session) DeleteEdge(edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.DeleteEdge(edgeID); err != nil {
		s.logger.Error("edge delete rejected", "edge_id", edgeID, "error", err)

		return err
	}

	s.markDirty()

	return nil
}

// SetViewport records the canvas pan/zoom state and dirties the session so
// the editor reopens where the author left off.
func (s *Session) SetViewport(vp models.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.SetViewport(vp)
	s.markDirty()
}

// Graph exposes read access to the current graph for rendering.
func (s *Session) Graph() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.graph
}

// Save persists the current definition. A clean session is a no-op; a second
// call while one save is in flight fails with ErrSaveInFlight rather than
// issuing overlapping requests. On failure the session returns to Dirty with
// every edit preserved — the caller may retry, nothing is retried
// automatically. Edits made while the save was in flight keep the session
// Dirty afterwards so they ride the next save.
func (s *Session) Save(ctx context.Context) (*models.Automator, error) {
	s.mu.Lock()

	if s.automatorID == "" {
		s.mu.Unlock()

		return nil, ErrNoAutomator
	}

	switch s.state {
	case StateSaving:
		s.mu.Unlock()

		return nil, ErrSaveInFlight
	case StateClean:
		s.mu.Unlock()

		return s.store.FetchByID(ctx, s.automatorID)
	case StateDirty:
	}

	id := s.automatorID
	def := s.graph.ToDefinition()
	s.state = StateSaving
	s.editedWhileSaving = false
	s.mu.Unlock()

	automator, err := s.store.SaveDefinition(ctx, id, def, s.actorID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateDirty

		return nil, fmt.Errorf("save automator %s: %w", id, err)
	}

	if s.editedWhileSaving {
		s.state = StateDirty
	} else {
		s.state = StateClean
	}

	s.editedWhileSaving = false

	return automator, nil
}

// markDirty transitions toward Dirty; while a save is in flight the edit is
// remembered so the session stays Dirty when that save lands.
// Callers must hold s.mu.
func (s *Session) markDirty() {
	if s.state == StateSaving {
		s.editedWhileSaving = true

		return
	}

	s.state = StateDirty
}

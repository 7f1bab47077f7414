// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"
	"github.com/guidely/automator/pkg/models"
)

// CreateTestNode creates a test node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:       uuid.New().String(),
		Type:     models.NodeTypeStart,
		Position: models.Position{X: 100, Y: 200},
		Data:     mustDefaultData(models.NodeTypeStart),
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithNodeID sets the node ID.
func WithNodeID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithNodeType sets the node type and resets its data to the default for that
// type.
func WithNodeType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
		n.Data = mustDefaultData(nodeType)
	}
}

func mustDefaultData(nodeType models.NodeType) models.NodeData {
	data, err := models.DefaultDataFor(nodeType)
	if err != nil {
		panic(err)
	}

	return data
}

// WithNodeData sets the node data.
func WithNodeData(data models.NodeData) func(*models.Node) {
	return func(n *models.Node) {
		n.Data = data
	}
}

// WithNodePosition sets the node position.
func WithNodePosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// CreateTestEdge creates a test edge between two nodes.
func CreateTestEdge(source, target string, overrides ...func(*models.Edge)) models.Edge {
	edge := models.Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
	}

	for _, override := range overrides {
		override(&edge)
	}

	return edge
}

// WithSourceHandle sets the edge source handle.
func WithSourceHandle(handle string) func(*models.Edge) {
	return func(e *models.Edge) {
		e.SourceHandle = handle
	}
}

// WithEdgeLabel sets the edge label.
func WithEdgeLabel(label string) func(*models.Edge) {
	return func(e *models.Edge) {
		e.Label = label
	}
}

// CreateTestAutomator creates a draft automator with an empty definition.
func CreateTestAutomator(overrides ...func(*models.Automator)) *models.Automator {
	automator := &models.Automator{
		ID:          uuid.New().String(),
		TeamID:      "team-1",
		Name:        "Test Automator",
		Description: "An automator for testing",
		Status:      models.AutomatorStatusDraft,
		Definition:  models.EmptyDefinition(),
		CreatedBy:   "test-user",
		UpdatedBy:   "test-user",
	}

	for _, override := range overrides {
		override(automator)
	}

	return automator
}

// WithAutomatorID sets the automator ID.
func WithAutomatorID(id string) func(*models.Automator) {
	return func(a *models.Automator) {
		a.ID = id
	}
}

// WithTeamID sets the owning team.
func WithTeamID(teamID string) func(*models.Automator) {
	return func(a *models.Automator) {
		a.TeamID = teamID
	}
}

// WithStatus sets the automator status.
func WithStatus(status models.AutomatorStatus) func(*models.Automator) {
	return func(a *models.Automator) {
		a.Status = status
	}
}

// WithDefinition sets the automator definition.
func WithDefinition(definition models.Definition) func(*models.Automator) {
	return func(a *models.Automator) {
		a.Definition = definition
	}
}

// CreateValidDefinition builds a complete definition that passes validation:
// start -> collect -> decision, with the yes branch ending in success and the
// no branch ending in failure.
func CreateValidDefinition() models.Definition {
	start := CreateTestNode(WithNodeID("start-1"))
	collect := CreateTestNode(WithNodeID("collect-1"), WithNodeType(models.NodeTypeDataCollection))
	decision := CreateTestNode(WithNodeID("decision-1"), WithNodeType(models.NodeTypeDecision))
	endYes := CreateTestNode(WithNodeID("end-yes"), WithNodeType(models.NodeTypeEnd))
	endNo := CreateTestNode(WithNodeID("end-no"), WithNodeType(models.NodeTypeEnd),
		WithNodeData(models.EndData{Label: "End", Outcome: models.OutcomeFailure}))

	return models.Definition{
		Nodes: []models.Node{start, collect, decision, endYes, endNo},
		Edges: []models.Edge{
			CreateTestEdge("start-1", "collect-1"),
			CreateTestEdge("collect-1", "decision-1"),
			CreateTestEdge("decision-1", "end-yes", WithSourceHandle(models.HandleYes), WithEdgeLabel("Yes")),
			CreateTestEdge("decision-1", "end-no", WithSourceHandle(models.HandleNo), WithEdgeLabel("No")),
		},
		Viewport: models.DefaultViewport(),
	}
}

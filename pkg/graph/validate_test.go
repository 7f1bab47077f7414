package graph

import (
	"strings"
	"testing"

	"github.com/guidely/automator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesOf(issues []Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.Message)
	}

	return strings.Join(parts, "; ")
}

func TestValidate_EmptyGraphHasNoStart(t *testing.T) {
	result := New().Validate()

	assert.False(t, result.Valid)
	assert.Contains(t, messagesOf(result.Errors), "no start node")
}

func TestValidate_TwoStartNodes(t *testing.T) {
	g := New()

	first, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	second, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(first, models.HandleDefault, end, "")
	require.NoError(t, err)
	_, err = g.Connect(second, models.HandleDefault, end, "")
	require.NoError(t, err)

	result := g.Validate()

	assert.False(t, result.Valid)
	assert.Contains(t, messagesOf(result.Errors), "more than one start node")
}

func TestValidate_StartMustNotHaveIncoming(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	decision, err := g.AddNode(models.NodeTypeDecision, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, models.HandleDefault, decision, "")
	require.NoError(t, err)
	_, err = g.Connect(decision, models.HandleYes, end, "")
	require.NoError(t, err)
	_, err = g.Connect(decision, models.HandleNo, start, "")
	require.NoError(t, err)

	result := g.Validate()

	assert.False(t, result.Valid)
	assert.Contains(t, messagesOf(result.Errors), "start node must not have incoming")
}

func TestValidate_DecisionMissingBranch(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	decision, err := g.AddNode(models.NodeTypeDecision, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, models.HandleDefault, decision, "")
	require.NoError(t, err)
	_, err = g.Connect(decision, models.HandleYes, end, "")
	require.NoError(t, err)

	result := g.Validate()

	assert.False(t, result.Valid)
	assert.Contains(t, messagesOf(result.Errors), `missing its "no" branch`)
}

func TestValidate_UnreachableNode(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)
	orphan, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, models.HandleDefault, end, "")
	require.NoError(t, err)

	result := g.Validate()

	assert.False(t, result.Valid)

	found := false

	for _, issue := range result.Errors {
		if issue.NodeID == orphan {
			found = true

			assert.Contains(t, issue.Message, "not reachable")
		}
	}

	assert.True(t, found, "expected an unreachable-node error for the orphan")
}

func TestValidate_DeadEndAtNonEndNode(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	collect, err := g.AddNode(models.NodeTypeDataCollection, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, models.HandleDefault, collect, "")
	require.NoError(t, err)

	result := g.Validate()

	assert.False(t, result.Valid)
	assert.Contains(t, messagesOf(result.Errors), "dead-ends")
}

func TestValidate_DuplicateFieldNamesWarnOnly(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	first, err := g.AddNode(models.NodeTypeDataCollection, models.Position{})
	require.NoError(t, err)
	second, err := g.AddNode(models.NodeTypeDataCollection, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	require.NoError(t, g.UpdateNodeData(first, map[string]any{"fieldName": "email"}))
	require.NoError(t, g.UpdateNodeData(second, map[string]any{"fieldName": "email"}))

	_, err = g.Connect(start, models.HandleDefault, first, "")
	require.NoError(t, err)
	_, err = g.Connect(first, models.HandleDefault, second, "")
	require.NoError(t, err)
	_, err = g.Connect(second, models.HandleDefault, end, "")
	require.NoError(t, err)

	result := g.Validate()

	assert.True(t, result.Valid, "duplicate field names must not block publishing: %s", messagesOf(result.Errors))
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, second, result.Warnings[0].NodeID)
	assert.Contains(t, result.Warnings[0].Message, "email")
}

// Builds the buyer-triage flow: a decision routes straight to success when a
// buyer exists, otherwise collects a showing date before ending in failure.
func TestValidate_BuyerTriageScenario(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{X: 0, Y: 0})
	require.NoError(t, err)
	decision, err := g.AddNode(models.NodeTypeDecision, models.Position{X: 200, Y: 0})
	require.NoError(t, err)
	success, err := g.AddNode(models.NodeTypeEnd, models.Position{X: 400, Y: -100})
	require.NoError(t, err)
	collect, err := g.AddNode(models.NodeTypeDataCollection, models.Position{X: 400, Y: 100})
	require.NoError(t, err)
	failure, err := g.AddNode(models.NodeTypeEnd, models.Position{X: 600, Y: 100})
	require.NoError(t, err)

	require.NoError(t, g.UpdateNodeData(decision, map[string]any{
		"question": "Has a buyer?",
		"storeAs":  "has_buyer",
	}))
	require.NoError(t, g.UpdateNodeData(collect, map[string]any{
		"fieldName": "showing_date",
		"fieldType": "date",
		"required":  true,
	}))
	require.NoError(t, g.UpdateNodeData(failure, map[string]any{"outcome": "failure"}))

	_, err = g.Connect(start, models.HandleDefault, decision, "")
	require.NoError(t, err)
	_, err = g.Connect(decision, models.HandleYes, success, "")
	require.NoError(t, err)
	noEdge, err := g.Connect(decision, models.HandleNo, collect, "")
	require.NoError(t, err)
	_, err = g.Connect(collect, models.HandleDefault, failure, "")
	require.NoError(t, err)

	result := g.Validate()
	require.True(t, result.Valid, "scenario graph should validate: %s", messagesOf(result.Errors))
	assert.Empty(t, result.Warnings)

	// Round-trips through the document form unchanged.
	reloaded, err := FromDefinition(g.ToDefinition())
	require.NoError(t, err)
	assert.Equal(t, g.ToDefinition(), reloaded.ToDefinition())
	assert.True(t, reloaded.Validate().Valid)

	// Dropping the no branch breaks the decision invariant.
	require.NoError(t, g.DeleteEdge(noEdge))

	result = g.Validate()
	assert.False(t, result.Valid)
	assert.Contains(t, messagesOf(result.Errors), `missing its "no" branch`)
}

package graph

import (
	"testing"

	"github.com/guidely/automator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode_GeneratesUniqueIDs(t *testing.T) {
	g := New()

	first, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)

	second, err := g.AddNode(models.NodeTypeEnd, models.Position{X: 100})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, g.NodeCount())
}

func TestAddNode_SetsDefaultData(t *testing.T) {
	g := New()

	id, err := g.AddNode(models.NodeTypeDataCollection, models.Position{})
	require.NoError(t, err)

	node := g.Node(id)
	require.NotNil(t, node)

	data, ok := node.Data.(models.DataCollectionData)
	require.True(t, ok)
	assert.Equal(t, "Collect data", data.Label)
	assert.Equal(t, models.FieldTypeText, data.FieldType)
}

func TestAddNode_UnknownTypeRejected(t *testing.T) {
	g := New()

	_, err := g.AddNode(models.NodeType("loop"), models.Position{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownNodeType)
	assert.Equal(t, 0, g.NodeCount())
}

func TestUpdateNodeData_MergesPatch(t *testing.T) {
	g := New()

	id, err := g.AddNode(models.NodeTypeDecision, models.Position{})
	require.NoError(t, err)

	require.NoError(t, g.UpdateNodeData(id, map[string]any{"question": "Paid?"}))

	data, ok := g.Node(id).Data.(models.DecisionData)
	require.True(t, ok)
	assert.Equal(t, "Paid?", data.Question)
	assert.Equal(t, "Decision", data.Label)
}

func TestUpdateNodeData_UnknownNode(t *testing.T) {
	g := New()

	err := g.UpdateNodeData("ghost", map[string]any{"label": "x"})
	require.Error(t, err)
	assert.True(t, IsNodeNotFound(err))
}

func TestMoveNode_UpdatesPosition(t *testing.T) {
	g := New()

	id, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)

	require.NoError(t, g.MoveNode(id, models.Position{X: 42, Y: -7}))

	node := g.Node(id)
	assert.InDelta(t, 42.0, node.Position.X, 0.001)
	assert.InDelta(t, -7.0, node.Position.Y, 0.001)
}

func TestDeleteNode_RemovesOnlyIncidentEdges(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	collect, err := g.AddNode(models.NodeTypeDataCollection, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, models.HandleDefault, collect, "")
	require.NoError(t, err)
	kept, err := g.Connect(collect, models.HandleDefault, end, "")
	require.NoError(t, err)

	require.NoError(t, g.DeleteNode(start))

	assert.Equal(t, 2, g.NodeCount())
	require.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, kept, g.Edges()[0].ID)
}

func TestDeleteNode_Unknown(t *testing.T) {
	g := New()

	err := g.DeleteNode("ghost")
	require.Error(t, err)
	assert.True(t, IsNodeNotFound(err))
}

func TestConnect_DefaultHandleHasNoLabel(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	id, err := g.Connect(start, models.HandleDefault, end, "")
	require.NoError(t, err)

	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, id, edges[0].ID)
	assert.Empty(t, edges[0].Label)
	assert.Empty(t, edges[0].SourceHandle)
}

func TestConnect_DecisionDerivesBranchLabels(t *testing.T) {
	g := New()

	decision, err := g.AddNode(models.NodeTypeDecision, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(decision, models.HandleYes, end, "")
	require.NoError(t, err)
	_, err = g.Connect(decision, models.HandleNo, end, "")
	require.NoError(t, err)

	labels := make(map[string]string)
	for _, edge := range g.Edges() {
		labels[edge.SourceHandle] = edge.Label
	}

	assert.Equal(t, "Yes", labels[models.HandleYes])
	assert.Equal(t, "No", labels[models.HandleNo])
}

func TestConnect_DecisionOccupiedHandleReplaces(t *testing.T) {
	g := New()

	decision, err := g.AddNode(models.NodeTypeDecision, models.Position{})
	require.NoError(t, err)
	first, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)
	second, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	oldEdge, err := g.Connect(decision, models.HandleYes, first, "")
	require.NoError(t, err)
	newEdge, err := g.Connect(decision, models.HandleYes, second, "")
	require.NoError(t, err)

	require.Equal(t, 1, g.EdgeCount())

	edge := g.Edges()[0]
	assert.Equal(t, newEdge, edge.ID)
	assert.NotEqual(t, oldEdge, edge.ID)
	assert.Equal(t, second, edge.Target)
}

func TestConnect_InvalidHandle(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, "yes", end, "")
	require.Error(t, err)
	assert.True(t, IsInvalidHandle(err))

	_, err = g.Connect(end, models.HandleDefault, start, "")
	require.Error(t, err)
	assert.True(t, IsInvalidHandle(err))
}

func TestConnect_MissingEndpoint(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)

	_, err = g.Connect(start, models.HandleDefault, "ghost", "")
	require.Error(t, err)
	assert.True(t, IsNodeNotFound(err))

	_, err = g.Connect("ghost", models.HandleDefault, start, "")
	require.Error(t, err)
	assert.True(t, IsNodeNotFound(err))
}

func TestDeleteEdge_RemovesEdge(t *testing.T) {
	g := New()

	start, err := g.AddNode(models.NodeTypeStart, models.Position{})
	require.NoError(t, err)
	end, err := g.AddNode(models.NodeTypeEnd, models.Position{})
	require.NoError(t, err)

	id, err := g.Connect(start, models.HandleDefault, end, "")
	require.NoError(t, err)

	require.NoError(t, g.DeleteEdge(id))
	assert.Equal(t, 0, g.EdgeCount())

	err = g.DeleteEdge(id)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEdgeNotFound)
}

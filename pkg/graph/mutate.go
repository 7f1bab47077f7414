package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/guidely/automator/pkg/models"
)

// AddNode inserts a new node of the given type at the given position with
// that type's default payload and returns its generated id.
func (g *Graph) AddNode(t models.NodeType, pos models.Position) (string, error) {
	data, err := models.DefaultDataFor(t)
	if err != nil {
		return "", &Error{Op: "AddNode", Err: err}
	}

	id := uuid.New().String()
	g.nodes[id] = &models.Node{
		ID:       id,
		Type:     t,
		Position: pos,
		Data:     data,
	}
	g.nodeOrder = append(g.nodeOrder, id)

	return id, nil
}

// UpdateNodeData shallow-merges a partial payload patch into the node's data.
// The node's type is preserved regardless of the patch contents.
func (g *Graph) UpdateNodeData(nodeID string, patch map[string]any) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return &Error{Op: "UpdateNodeData", NodeID: nodeID, Err: ErrNodeNotFound}
	}

	merged, err := models.MergeNodeData(node.Data, patch)
	if err != nil {
		return &Error{Op: "UpdateNodeData", NodeID: nodeID, Err: err}
	}

	node.Data = merged

	return nil
}

// MoveNode updates a node's canvas position.
func (g *Graph) MoveNode(nodeID string, pos models.Position) error {
	node, ok := g.nodes[nodeID]
	if !ok {
		return &Error{Op: "MoveNode", NodeID: nodeID, Err: ErrNodeNotFound}
	}

	node.Position = pos

	return nil
}

// DeleteNode removes the node and every edge that references it as source or
// target, so no dangling edge survives.
func (g *Graph) DeleteNode(nodeID string) error {
	if _, ok := g.nodes[nodeID]; !ok {
		return &Error{Op: "DeleteNode", NodeID: nodeID, Err: ErrNodeNotFound}
	}

	delete(g.nodes, nodeID)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(id string) bool {
		return id == nodeID
	})

	for id, edge := range g.edges {
		if edge.Source == nodeID || edge.Target == nodeID {
			g.removeEdge(id)
		}
	}

	return nil
}

// Connect creates an edge between two nodes and returns its generated id.
// For decision sources the handle must be "yes" or "no" and a second edge
// from an occupied handle replaces the existing one, retiring its id. Labels
// are derived ("Yes"/"No") only for decision sources.
func (g *Graph) Connect(source, sourceHandle, target, targetHandle string) (string, error) {
	sourceNode, ok := g.nodes[source]
	if !ok {
		return "", &Error{Op: "Connect", NodeID: source, Err: ErrNodeNotFound}
	}

	if _, ok := g.nodes[target]; !ok {
		return "", &Error{Op: "Connect", NodeID: target, Err: ErrNodeNotFound}
	}

	if !slices.Contains(models.SourceHandles(sourceNode.Type), sourceHandle) {
		return "", &Error{
			Op:     "Connect",
			NodeID: source,
			Err:    fmt.Errorf("%w: %q is not an output of a %s node", ErrInvalidHandle, sourceHandle, sourceNode.Type),
		}
	}

	if sourceNode.Type == models.NodeTypeDecision {
		for id, edge := range g.edges {
			if edge.Source == source && edge.SourceHandle == sourceHandle {
				g.removeEdge(id)

				break
			}
		}
	}

	id := uuid.New().String()
	g.edges[id] = &models.Edge{
		ID:           id,
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
		Label:        branchLabel(sourceNode.Type, sourceHandle),
	}
	g.edgeOrder = append(g.edgeOrder, id)

	return id, nil
}

// DeleteEdge removes a single edge by id.
func (g *Graph) DeleteEdge(edgeID string) error {
	if _, ok := g.edges[edgeID]; !ok {
		return &Error{Op: "DeleteEdge", EdgeID: edgeID, Err: ErrEdgeNotFound}
	}

	g.removeEdge(edgeID)

	return nil
}

func (g *Graph) removeEdge(edgeID string) {
	delete(g.edges, edgeID)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(id string) bool {
		return id == edgeID
	})
}

func branchLabel(t models.NodeType, handle string) string {
	if t != models.NodeTypeDecision {
		return ""
	}

	switch handle {
	case models.HandleYes:
		return "Yes"
	case models.HandleNo:
		return "No"
	}

	return ""
}

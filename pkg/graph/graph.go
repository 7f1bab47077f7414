package graph

import (
	"fmt"

	"github.com/guidely/automator/pkg/models"
)

// Graph is the mutable in-memory form of an automator definition: nodes and
// edges held in id-indexed maps with insertion order preserved for
// serialization. Edges may reference nodes inserted in any order; deleting a
// node removes its incident edges so no dangling reference can exist.
//
// A Graph is not safe for concurrent use. The builder session owns the live
// instance for the duration of an editing session.
type Graph struct {
	nodes     map[string]*models.Node
	edges     map[string]*models.Edge
	nodeOrder []string
	edgeOrder []string
	viewport  models.Viewport
}

// New returns an empty graph with the default viewport.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*models.Node),
		edges:    make(map[string]*models.Edge),
		viewport: models.DefaultViewport(),
	}
}

// FromDefinition loads a definition document into a graph. It fails with
// ErrMalformedDefinition when node or edge ids collide, an edge references a
// missing node, or a node carries an unknown type; callers that must stay
// usable on bad input (the persistence load path) recover by substituting an
// empty graph.
func FromDefinition(def models.Definition) (*Graph, error) {
	g := New()

	if def.Viewport.Zoom != 0 {
		g.viewport = def.Viewport
	}

	for _, node := range def.Nodes {
		if node.ID == "" {
			return nil, &Error{Op: "FromDefinition", Err: fmt.Errorf("%w: node with empty id", ErrMalformedDefinition)}
		}

		if _, exists := g.nodes[node.ID]; exists {
			return nil, &Error{Op: "FromDefinition", NodeID: node.ID, Err: fmt.Errorf("%w: duplicate node id", ErrMalformedDefinition)}
		}

		if node.Data == nil || node.Data.NodeType() != node.Type {
			return nil, &Error{Op: "FromDefinition", NodeID: node.ID, Err: fmt.Errorf("%w: data does not match node type %q", ErrMalformedDefinition, node.Type)}
		}

		stored := node
		stored.Data = node.Data.Clone()
		g.nodes[node.ID] = &stored
		g.nodeOrder = append(g.nodeOrder, node.ID)
	}

	for _, edge := range def.Edges {
		if edge.ID == "" {
			return nil, &Error{Op: "FromDefinition", Err: fmt.Errorf("%w: edge with empty id", ErrMalformedDefinition)}
		}

		if _, exists := g.edges[edge.ID]; exists {
			return nil, &Error{Op: "FromDefinition", EdgeID: edge.ID, Err: fmt.Errorf("%w: duplicate edge id", ErrMalformedDefinition)}
		}

		if _, ok := g.nodes[edge.Source]; !ok {
			return nil, &Error{Op: "FromDefinition", EdgeID: edge.ID, Err: fmt.Errorf("%w: edge source %q does not exist", ErrMalformedDefinition, edge.Source)}
		}

		if _, ok := g.nodes[edge.Target]; !ok {
			return nil, &Error{Op: "FromDefinition", EdgeID: edge.ID, Err: fmt.Errorf("%w: edge target %q does not exist", ErrMalformedDefinition, edge.Target)}
		}

		stored := edge
		g.edges[edge.ID] = &stored
		g.edgeOrder = append(g.edgeOrder, edge.ID)
	}

	return g, nil
}

// ToDefinition projects the graph into its serializable document form. The
// returned definition shares no memory with the graph.
func (g *Graph) ToDefinition() models.Definition {
	def := models.Definition{
		Nodes:    make([]models.Node, 0, len(g.nodeOrder)),
		Edges:    make([]models.Edge, 0, len(g.edgeOrder)),
		Viewport: g.viewport,
	}

	for _, id := range g.nodeOrder {
		node := *g.nodes[id]
		node.Data = node.Data.Clone()
		def.Nodes = append(def.Nodes, node)
	}

	for _, id := range g.edgeOrder {
		def.Edges = append(def.Edges, *g.edges[id])
	}

	return def
}

// Node returns the node with the given id, or nil when absent. The returned
// value is a copy; mutations go through the graph operations.
func (g *Graph) Node(id string) *models.Node {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}

	clone := *node
	clone.Data = node.Data.Clone()

	return &clone
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []models.Node {
	nodes := make([]models.Node, 0, len(g.nodeOrder))

	for _, id := range g.nodeOrder {
		node := *g.nodes[id]
		node.Data = node.Data.Clone()
		nodes = append(nodes, node)
	}

	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []models.Edge {
	edges := make([]models.Edge, 0, len(g.edgeOrder))

	for _, id := range g.edgeOrder {
		edges = append(edges, *g.edges[id])
	}

	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Viewport returns the stored canvas viewport.
func (g *Graph) Viewport() models.Viewport {
	return g.viewport
}

// SetViewport records the canvas pan/zoom state.
func (g *Graph) SetViewport(vp models.Viewport) {
	g.viewport = vp
}

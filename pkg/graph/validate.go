package graph

import (
	"fmt"

	"github.com/guidely/automator/pkg/models"
)

// Issue is one structural problem (or advisory warning) found by Validate.
type Issue struct {
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of the publish gate. Valid is true when no
// blocking errors were found; warnings never block.
type ValidationResult struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Validate checks the graph against the publishable-shape invariants:
// exactly one start node with no inbound edges, both branches wired on every
// decision, a single outbound edge on start and dataCollection nodes, no
// dangling edges, every node reachable from start, and no reachable path
// dead-ending before an end node. Duplicate dataCollection field names are
// reported as warnings only — the collected answers would overwrite each
// other, but the graph is still structurally sound.
func (g *Graph) Validate() ValidationResult {
	result := ValidationResult{Errors: []Issue{}}

	starts := g.nodesOfType(models.NodeTypeStart)

	switch {
	case len(starts) == 0:
		result.Errors = append(result.Errors, Issue{Message: "graph has no start node"})
	case len(starts) > 1:
		for _, id := range starts[1:] {
			result.Errors = append(result.Errors, Issue{NodeID: id, Message: "graph has more than one start node"})
		}
	}

	outgoing := make(map[string][]*models.Edge, len(g.nodes))
	incoming := make(map[string]int, len(g.nodes))

	for _, id := range g.edgeOrder {
		edge := g.edges[id]

		if _, ok := g.nodes[edge.Source]; !ok {
			result.Errors = append(result.Errors, Issue{Message: fmt.Sprintf("edge %s references missing source node %s", edge.ID, edge.Source)})

			continue
		}

		if _, ok := g.nodes[edge.Target]; !ok {
			result.Errors = append(result.Errors, Issue{Message: fmt.Sprintf("edge %s references missing target node %s", edge.ID, edge.Target)})

			continue
		}

		outgoing[edge.Source] = append(outgoing[edge.Source], edge)
		incoming[edge.Target]++
	}

	for _, id := range g.nodeOrder {
		node := g.nodes[id]

		switch node.Type {
		case models.NodeTypeStart:
			if incoming[id] > 0 {
				result.Errors = append(result.Errors, Issue{NodeID: id, Message: "start node must not have incoming connections"})
			}

			if len(outgoing[id]) > 1 {
				result.Errors = append(result.Errors, Issue{NodeID: id, Message: "start node must have a single outgoing connection"})
			}
		case models.NodeTypeDecision:
			g.checkDecisionBranches(&result, id, outgoing[id])
		case models.NodeTypeDataCollection:
			if len(outgoing[id]) > 1 {
				result.Errors = append(result.Errors, Issue{NodeID: id, Message: "data collection node must have a single outgoing connection"})
			}
		case models.NodeTypeEnd:
			if len(outgoing[id]) > 0 {
				result.Errors = append(result.Errors, Issue{NodeID: id, Message: "end node must not have outgoing connections"})
			}
		}
	}

	if len(starts) == 1 {
		g.checkReachability(&result, starts[0], outgoing)
	}

	result.Warnings = g.fieldNameWarnings()
	result.Valid = len(result.Errors) == 0

	return result
}

func (g *Graph) checkDecisionBranches(result *ValidationResult, nodeID string, edges []*models.Edge) {
	var hasYes, hasNo bool

	for _, edge := range edges {
		switch edge.SourceHandle {
		case models.HandleYes:
			hasYes = true
		case models.HandleNo:
			hasNo = true
		}
	}

	if !hasYes {
		result.Errors = append(result.Errors, Issue{NodeID: nodeID, Message: `decision node is missing its "yes" branch`})
	}

	if !hasNo {
		result.Errors = append(result.Errors, Issue{NodeID: nodeID, Message: `decision node is missing its "no" branch`})
	}
}

// checkReachability walks the graph from the start node: every node must be
// reached, and every reached non-end node must continue somewhere.
func (g *Graph) checkReachability(result *ValidationResult, startID string, outgoing map[string][]*models.Edge) {
	reached := map[string]bool{startID: true}
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range outgoing[current] {
			if !reached[edge.Target] {
				reached[edge.Target] = true
				queue = append(queue, edge.Target)
			}
		}
	}

	for _, id := range g.nodeOrder {
		node := g.nodes[id]

		if !reached[id] {
			result.Errors = append(result.Errors, Issue{NodeID: id, Message: "node is not reachable from the start node"})

			continue
		}

		if node.Type != models.NodeTypeEnd && len(outgoing[id]) == 0 {
			result.Errors = append(result.Errors, Issue{NodeID: id, Message: "path dead-ends here: node has no outgoing connection and is not an end node"})
		}
	}
}

// fieldNameWarnings reports dataCollection nodes whose fieldName collides
// with another node's. Advisory only: answers recorded under the same key
// overwrite each other at run time.
func (g *Graph) fieldNameWarnings() []Issue {
	seen := make(map[string]string)

	var warnings []Issue

	for _, id := range g.nodeOrder {
		node := g.nodes[id]

		data, ok := node.Data.(models.DataCollectionData)
		if !ok || data.FieldName == "" {
			continue
		}

		if firstID, dup := seen[data.FieldName]; dup {
			warnings = append(warnings, Issue{
				NodeID:  id,
				Message: fmt.Sprintf("field name %q is already used by node %s; collected answers will overwrite each other", data.FieldName, firstID),
			})

			continue
		}

		seen[data.FieldName] = id
	}

	return warnings
}

func (g *Graph) nodesOfType(t models.NodeType) []string {
	var ids []string

	for _, id := range g.nodeOrder {
		if g.nodes[id].Type == t {
			ids = append(ids, id)
		}
	}

	return ids
}

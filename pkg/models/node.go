// Node step kinds and the typed payload union for the automator graph.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NodeType is the closed set of step kinds an automator graph may contain.
type NodeType string

const (
	NodeTypeStart          NodeType = "start"
	NodeTypeEnd            NodeType = "end"
	NodeTypeDecision       NodeType = "decision"
	NodeTypeDataCollection NodeType = "dataCollection"
)

// ErrUnknownNodeType indicates a node type outside the closed set.
var ErrUnknownNodeType = errors.New("unknown node type")

// NodeTypes lists every known node type in palette order.
func NodeTypes() []NodeType {
	return []NodeType{NodeTypeStart, NodeTypeEnd, NodeTypeDecision, NodeTypeDataCollection}
}

// Named source handles. Decision nodes expose HandleYes and HandleNo; every
// other type with outputs uses the single unnamed default handle.
const (
	HandleDefault = ""
	HandleYes     = "yes"
	HandleNo      = "no"
)

// SourceHandles returns the legal outgoing handles for a node type. End nodes
// have none.
func SourceHandles(t NodeType) []string {
	switch t {
	case NodeTypeStart, NodeTypeDataCollection:
		return []string{HandleDefault}
	case NodeTypeDecision:
		return []string{HandleYes, HandleNo}
	case NodeTypeEnd:
		return nil
	}

	return nil
}

// Position is a node's location in graph space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a typed step in the automator graph. Data always matches Type; the
// pairing is enforced at decode time and by the graph mutation operations.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"     validate:"required"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// UnmarshalJSON decodes the data payload into the concrete type selected by
// the node's type tag.
func (n *Node) UnmarshalJSON(raw []byte) error {
	var head struct {
		ID       string          `json:"id"`
		Type     NodeType        `json:"type"`
		Position Position        `json:"position"`
		Data     json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(raw, &head); err != nil {
		return err
	}

	data, err := UnmarshalNodeData(head.Type, head.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", head.ID, err)
	}

	n.ID = head.ID
	n.Type = head.Type
	n.Position = head.Position
	n.Data = data

	return nil
}

// Package graph provides structural mutation and validation of automator
// definition graphs.
package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by graph operations. These indicate contract
// violations by the caller, not user-facing conditions: well-formed editor
// input never triggers them.
var (
	// ErrNodeNotFound indicates an operation referenced a node id absent
	// from the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates an operation referenced an edge id absent
	// from the graph.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrInvalidHandle indicates a connect request named a source handle
	// the source node's type does not expose.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrMalformedDefinition indicates a definition document that cannot be
	// loaded into a graph (duplicate ids, dangling edge endpoints, unknown
	// node types).
	ErrMalformedDefinition = errors.New("malformed definition")
)

// Error wraps a graph operation failure with the operation name and the node
// or edge it targeted.
type Error struct {
	Op     string // Operation being performed (e.g. "Connect", "DeleteNode")
	NodeID string // Node ID if applicable
	EdgeID string // Edge ID if applicable
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.NodeID != "":
		return fmt.Sprintf("%s failed for node %s: %v", e.Op, e.NodeID, e.Err)
	case e.EdgeID != "":
		return fmt.Sprintf("%s failed for edge %s: %v", e.Op, e.EdgeID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsNodeNotFound checks if an error indicates a missing node.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsInvalidHandle checks if an error indicates an illegal source handle.
func IsInvalidHandle(err error) bool {
	return errors.Is(err, ErrInvalidHandle)
}

// IsMalformedDefinition checks if an error indicates an unloadable definition
// document.
func IsMalformedDefinition(err error) bool {
	return errors.Is(err, ErrMalformedDefinition)
}

package models

// Viewport is the canvas pan/zoom state stored alongside the graph so the
// editor reopens where the author left off.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the origin viewport at 1:1 zoom.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// Definition is the serializable graph payload of an automator: the document
// shape exchanged with the canvas and stored by the persistence layer.
type Definition struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// EmptyDefinition returns a definition with no nodes or edges and the default
// viewport. Used as the recovery value when a stored definition is malformed.
func EmptyDefinition() Definition {
	return Definition{
		Nodes:    []Node{},
		Edges:    []Edge{},
		Viewport: DefaultViewport(),
	}
}

// Edge is a directed connection between two nodes. SourceHandle names the
// output it leaves from: "yes"/"no" for decision nodes, empty for the single
// default handle on every other type.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"       validate:"required"`
	Target       string `json:"target"       validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

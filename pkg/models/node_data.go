package models

import (
	"encoding/json"
	"fmt"
)

// EndOutcome is the terminal result an end node records for the guided run.
type EndOutcome string

const (
	OutcomeSuccess   EndOutcome = "success"
	OutcomeFailure   EndOutcome = "failure"
	OutcomeCancelled EndOutcome = "cancelled"
)

// FieldType is the input widget a dataCollection node presents.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
)

// NodeData is the typed payload union, discriminated by the owning node's
// Type. Adding a node kind means adding a variant here and extending the
// switches in DefaultDataFor and UnmarshalNodeData.
type NodeData interface {
	NodeType() NodeType
	Clone() NodeData
}

// StartData is the payload of the single entry-point node.
type StartData struct {
	Label       string `json:"label"       validate:"required"`
	Description string `json:"description,omitempty"`
}

func (StartData) NodeType() NodeType { return NodeTypeStart }
func (d StartData) Clone() NodeData  { return d }

// EndData is the payload of an exit-outcome node.
type EndData struct {
	Label       string     `json:"label"       validate:"required"`
	Description string     `json:"description,omitempty"`
	Outcome     EndOutcome `json:"outcome"     validate:"required,oneof=success failure cancelled"`
}

func (EndData) NodeType() NodeType { return NodeTypeEnd }
func (d EndData) Clone() NodeData  { return d }

// DecisionData is the payload of a yes/no branch node. StoreAs, when set, is
// the field name the boolean answer is recorded under.
type DecisionData struct {
	Label       string `json:"label"       validate:"required"`
	Description string `json:"description,omitempty"`
	Question    string `json:"question"    validate:"required"`
	StoreAs     string `json:"storeAs,omitempty"`
}

func (DecisionData) NodeType() NodeType { return NodeTypeDecision }
func (d DecisionData) Clone() NodeData  { return d }

// DataCollectionData is the payload of a data-collection prompt. FieldName is
// the key the collected answer is stored under; Options apply to select and
// multiselect fields, Min/Max to number fields.
type DataCollectionData struct {
	Label       string    `json:"label"       validate:"required"`
	Description string    `json:"description,omitempty"`
	FieldName   string    `json:"fieldName"   validate:"required"`
	FieldType   FieldType `json:"fieldType"   validate:"required,oneof=text textarea number date select multiselect"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
}

func (DataCollectionData) NodeType() NodeType { return NodeTypeDataCollection }

func (d DataCollectionData) Clone() NodeData {
	clone := d

	if d.Options != nil {
		clone.Options = make([]string, len(d.Options))
		copy(clone.Options, d.Options)
	}

	if d.Min != nil {
		v := *d.Min
		clone.Min = &v
	}

	if d.Max != nil {
		v := *d.Max
		clone.Max = &v
	}

	return clone
}

// DefaultDataFor returns the payload a freshly dropped node of the given type
// starts with. Total over the four kinds, ErrUnknownNodeType for anything else.
func DefaultDataFor(t NodeType) (NodeData, error) {
	switch t {
	case NodeTypeStart:
		return StartData{Label: "Start"}, nil
	case NodeTypeEnd:
		return EndData{Label: "End", Outcome: OutcomeSuccess}, nil
	case NodeTypeDecision:
		return DecisionData{Label: "Decision"}, nil
	case NodeTypeDataCollection:
		return DataCollectionData{Label: "Collect data", FieldType: FieldTypeText}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

// UnmarshalNodeData decodes a raw payload into the variant selected by the
// type tag. A nil payload yields that type's default data.
func UnmarshalNodeData(t NodeType, raw json.RawMessage) (NodeData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultDataFor(t)
	}

	switch t {
	case NodeTypeStart:
		var d StartData

		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode start data: %w", err)
		}

		return d, nil
	case NodeTypeEnd:
		var d EndData

		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode end data: %w", err)
		}

		return d, nil
	case NodeTypeDecision:
		var d DecisionData

		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode decision data: %w", err)
		}

		return d, nil
	case NodeTypeDataCollection:
		var d DataCollectionData

		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode dataCollection data: %w", err)
		}

		return d, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

// MergeNodeData shallow-merges a partial patch into existing payload fields.
// The discriminant cannot change: any "type" key in the patch is discarded and
// the result is decoded back into the same variant.
func MergeNodeData(data NodeData, patch map[string]any) (NodeData, error) {
	current, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode node data: %w", err)
	}

	merged := make(map[string]any)
	if err := json.Unmarshal(current, &merged); err != nil {
		return nil, fmt.Errorf("decode node data: %w", err)
	}

	for key, value := range patch {
		if key == "type" {
			continue
		}

		if value == nil {
			delete(merged, key)

			continue
		}

		merged[key] = value
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged data: %w", err)
	}

	return UnmarshalNodeData(data.NodeType(), raw)
}

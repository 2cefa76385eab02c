// Package protocol defines the interfaces and contracts for pluggable nodes and protocol populators.
package protocol

import (
	"context"

	"github.com/dukex/sdsprotocol/pkg/models"
)

// Node is a configured step instance that turns port inputs into port outputs.
type Node interface {
	// ID returns the node instance identifier
	ID() string

	// Type returns the node type, matching the factory ID
	Type() string

	// Execute runs the node against the inputs received on its ports
	Execute(ctx models.ExecutionContext, inputs map[string]models.NodeResult) (map[string]models.NodeResult, error)

	InputPorts() []models.InputPort
	OutputPorts() []models.OutputPort
	InputRequirements() models.InputRequirements

	// Validate checks a configuration without creating a node
	Validate(config map[string]any) error
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// ID returns the unique identifier for this node type
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any
}

// Package sdsprotocol provides the SDS protocol node factory for registry integration.
package sdsprotocol

import (
	"context"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/protocol"
	"github.com/dukex/sdsprotocol/pkg/protocols"
)

// NodeType is the factory ID of the SDS protocol node.
const NodeType = "sds-protocol"

// SDSProtocolNodeFactory creates SDSProtocolNode instances bound to a protocol catalog.
type SDSProtocolNodeFactory struct {
	catalog *protocols.Registry
}

// Create creates a new SDSProtocolNode instance.
func (f *SDSProtocolNodeFactory) Create(ctx context.Context, id string, config map[string]any) (protocol.Node, error) {
	node, err := NewSDSProtocolNode(id, config, f.catalog)
	if err != nil {
		return nil, err
	}

	return node, nil
}

// ID returns the factory ID.
func (f *SDSProtocolNodeFactory) ID() string {
	return NodeType
}

// Name returns the factory name.
func (f *SDSProtocolNodeFactory) Name() string {
	return "SDS Protocol"
}

// Description returns the factory description.
func (f *SDSProtocolNodeFactory) Description() string {
	return "Assigns upstream file locations and provenance data to the inputs of an SDS protocol, in declaration order"
}

// Schema returns the JSON schema for SDS protocol node configuration.
func (f *SDSProtocolNodeFactory) Schema() map[string]any {
	return configSchema(f.catalog)
}

func configSchema(catalog *protocols.Registry) map[string]any {
	protocolName := map[string]any{
		"type":        "string",
		"description": "Name of the protocol to populate",
	}

	if catalog != nil && len(catalog.Names()) > 0 {
		protocolName["enum"] = catalog.Names()
		protocolName["examples"] = catalog.Names()
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"identifier": map[string]any{
				"type":        "string",
				"description": "Workflow-unique name of the step",
				"pattern":     `^[^/\\]*$`,
				"examples":    []string{"scaffold-sds"},
			},
			"protocol_name": protocolName,
		},
		"required": []string{"protocol_name"},
		"examples": []map[string]any{
			{
				"identifier":    "scaffold-sds",
				"protocol_name": protocols.SimpleScaffoldName,
			},
		},
	}
}

// NewSDSProtocolNodeFactory creates a new factory instance.
func NewSDSProtocolNodeFactory(catalog *protocols.Registry) protocol.NodeFactory {
	return &SDSProtocolNodeFactory{catalog: catalog}
}

// configFromMap reads a step configuration out of a node configuration map.
func configFromMap(config map[string]any) models.StepConfig {
	cfg := models.DefaultStepConfig()

	if identifier, ok := config["identifier"].(string); ok {
		cfg.Identifier = identifier
	}

	if name, ok := config["protocol_name"].(string); ok && name != "" {
		cfg.ProtocolName = name
	}

	return cfg
}

// ConfigMap converts a step configuration into a node configuration map.
func ConfigMap(cfg models.StepConfig) map[string]any {
	return map[string]any{
		"identifier":    cfg.Identifier,
		"protocol_name": cfg.ProtocolName,
	}
}

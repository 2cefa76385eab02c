// Package sdsprotocol provides the SDS protocol node implementation for workflow graph execution.
package sdsprotocol

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/protocols"
	"github.com/xeipuuv/gojsonschema"
)

const (
	OutputPortProtocol = "sds_protocol"
	OutputPortError    = "error"
	InputPortLocations = "locations"

	// LocationsKey is the key of the candidate list in the locations port data.
	LocationsKey = "locations"
)

var errNoCatalog = errors.New("no protocol catalog configured")

// SDSProtocolNode implements the Node interface for populating SDS protocols.
type SDSProtocolNode struct {
	id           string
	identifier   string
	protocolName string
	catalog      *protocols.Registry
	logger       *slog.Logger
}

// NewSDSProtocolNode creates a new SDS protocol node.
func NewSDSProtocolNode(id string, config map[string]any, catalog *protocols.Registry) (*SDSProtocolNode, error) {
	if catalog == nil {
		return nil, errNoCatalog
	}

	if err := validateConfig(catalog, config); err != nil {
		return nil, err
	}

	cfg := configFromMap(config)

	return &SDSProtocolNode{
		id:           id,
		identifier:   cfg.Identifier,
		protocolName: cfg.ProtocolName,
		catalog:      catalog,
		logger:       slog.Default().With("node_id", id, "node_type", NodeType),
	}, nil
}

// ID returns the node ID.
func (n *SDSProtocolNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *SDSProtocolNode) Type() string {
	return NodeType
}

// Identifier returns the workflow-unique step identifier.
func (n *SDSProtocolNode) Identifier() string {
	return n.identifier
}

// ProtocolName returns the name of the protocol this node populates.
func (n *SDSProtocolNode) ProtocolName() string {
	return n.protocolName
}

// Execute populates a fresh copy of the configured protocol with the received locations.
// Rejected batches are reported on the error port; the protocol port then carries nothing.
func (n *SDSProtocolNode) Execute(ctx models.ExecutionContext, inputs map[string]models.NodeResult) (map[string]models.NodeResult, error) {
	logger := n.logger.With("execution_id", ctx.ID, "protocol", n.protocolName)

	input, ok := inputs[InputPortLocations]
	if !ok {
		return n.createErrorResult("no data received on port " + InputPortLocations), nil
	}

	data, err := Candidates(input.Data[LocationsKey])
	if err != nil {
		return n.createErrorResult(err.Error()), nil
	}

	protocol, ok := n.catalog.GetByName(n.protocolName)
	if !ok {
		return n.createErrorResult(fmt.Sprintf("protocol %q not found", n.protocolName)), nil
	}

	assignment, err := n.catalog.Match(protocol, data)
	if err != nil {
		logger.Info("Protocol not populated", "error", err)

		return n.createErrorResult(err.Error()), nil
	}

	populated := protocol.WithAssignment(assignment)

	logger.Debug("Protocol populated", "filled", assignment.Len(), "inputs", len(populated.Inputs))

	return map[string]models.NodeResult{
		OutputPortProtocol: {
			NodeID: n.id,
			Data: map[string]any{
				"protocol":   populated,
				"assignment": assignment,
			},
			Status:    string(models.NodeStatusSuccess),
			Timestamp: time.Now().UTC(),
		},
	}, nil
}

// createErrorResult creates a NodeResult for the error output port.
func (n *SDSProtocolNode) createErrorResult(errorMessage string) map[string]models.NodeResult {
	return map[string]models.NodeResult{
		OutputPortError: {
			NodeID: n.id,
			Data: map[string]any{
				"error":   errorMessage,
				"success": false,
			},
			Status:    string(models.NodeStatusError),
			Timestamp: time.Now().UTC(),
			Error:     errorMessage,
		},
	}
}

// Candidates normalizes the data received on the locations port into an ordered list.
// A single path or dictionary becomes a one-element list.
func Candidates(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.New("missing required field '" + LocationsKey + "'")
	case []any:
		return v, nil
	case []string:
		data := make([]any, len(v))
		for i, s := range v {
			data[i] = s
		}

		return data, nil
	case []map[string]any:
		data := make([]any, len(v))
		for i, m := range v {
			data[i] = m
		}

		return data, nil
	case string, map[string]any:
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("unsupported type %T for field '%s'", value, LocationsKey)
	}
}

// InputPorts returns the input ports for the node.
func (n *SDSProtocolNode) InputPorts() []models.InputPort {
	return []models.InputPort{
		{
			Port: models.Port{
				ID:          models.MakePortID(n.id, InputPortLocations),
				NodeID:      n.id,
				Name:        InputPortLocations,
				Description: "File locations, directory locations and provenance dictionaries, in protocol input order",
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						LocationsKey: map[string]any{
							"type":  "array",
							"items": map[string]any{"type": []string{"string", "object"}},
						},
					},
				},
			},
			ListOf: true,
		},
	}
}

// OutputPorts returns the output ports for the node.
func (n *SDSProtocolNode) OutputPorts() []models.OutputPort {
	return []models.OutputPort{
		{
			Port: models.Port{
				ID:          models.MakePortID(n.id, OutputPortProtocol),
				NodeID:      n.id,
				Name:        OutputPortProtocol,
				Description: "The populated protocol",
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"protocol":   map[string]any{"type": "object", "description": "Protocol with every resolved input value set"},
						"assignment": map[string]any{"type": "object", "description": "Input index to candidate index bindings"},
					},
				},
			},
		},
		{
			Port: models.Port{
				ID:          models.MakePortID(n.id, OutputPortError),
				NodeID:      n.id,
				Name:        OutputPortError,
				Description: "Reason the locations could not be assigned to the protocol",
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error":   map[string]any{"type": "string"},
						"success": map[string]any{"type": "boolean"},
					},
				},
			},
		},
	}
}

// InputRequirements returns the input coordination requirements for the node.
func (n *SDSProtocolNode) InputRequirements() models.InputRequirements {
	return models.InputRequirements{
		RequiredPorts: []string{InputPortLocations},
		OptionalPorts: []string{},
		WaitMode:      models.WaitModeAll,
		Timeout:       nil,
	}
}

// Validate validates the node configuration.
func (n *SDSProtocolNode) Validate(config map[string]any) error {
	return validateConfig(n.catalog, config)
}

func validateConfig(catalog *protocols.Registry, config map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(configSchema(catalog))
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}

	return nil
}

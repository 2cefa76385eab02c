package models

// StepConfig is the persisted configuration of one SDS protocol step.
type StepConfig struct {
	Identifier   string `json:"identifier"    validate:"excludesall=/\\"`
	ProtocolName string `json:"protocol_name" validate:"required"`
}

// DefaultStepConfig returns the configuration of a freshly added, unconfigured step.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		Identifier:   "",
		ProtocolName: UnconfiguredProtocol,
	}
}

// IsConfigured reports whether a protocol has been chosen.
func (c StepConfig) IsConfigured() bool {
	return c.ProtocolName != "" && c.ProtocolName != UnconfiguredProtocol
}

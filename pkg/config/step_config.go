// Package config serializes and validates SDS protocol step configurations.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrIdentifierNotUnique indicates another step of the workflow already uses the identifier.
	ErrIdentifierNotUnique = errors.New("identifier is not unique within the workflow")

	// ErrProtocolNotConfigured indicates the step still carries the placeholder protocol.
	ErrProtocolNotConfigured = errors.New("protocol not configured")

	// ErrUnknownProtocol indicates the protocol name does not resolve in the catalog.
	ErrUnknownProtocol = errors.New("unknown protocol")

	// ErrMalformedConfig indicates the configuration fails structural validation.
	ErrMalformedConfig = errors.New("malformed step configuration")
)

// IdentifierOccurs returns how many steps of the enclosing workflow use identifier.
type IdentifierOccurs func(identifier string) int

// ProtocolResolver looks protocols up by name.
type ProtocolResolver interface {
	GetByName(name string) (*models.Protocol, bool)
}

const indent = "    "

var validate = validator.New(validator.WithRequiredStructEnabled())

// Serialize renders cfg as a JSON object with sorted keys and four-space indentation.
func Serialize(cfg models.StepConfig) (string, error) {
	record := map[string]string{
		"identifier":    cfg.Identifier,
		"protocol_name": cfg.ProtocolName,
	}

	data, err := json.MarshalIndent(record, "", indent)
	if err != nil {
		return "", fmt.Errorf("failed to serialize step configuration: %w", err)
	}

	return string(data), nil
}

// Deserialize parses a serialized configuration and merges it into the defaults, so partial
// or legacy records yield a complete configuration. Unknown keys are ignored.
func Deserialize(data string) (models.StepConfig, error) {
	var loaded models.StepConfig
	if err := json.Unmarshal([]byte(data), &loaded); err != nil {
		return models.StepConfig{}, fmt.Errorf("failed to parse step configuration: %w", err)
	}

	return MergeDefaults(loaded)
}

// MergeDefaults fills the empty fields of cfg with the defaults.
func MergeDefaults(cfg models.StepConfig) (models.StepConfig, error) {
	merged := models.DefaultStepConfig()
	if err := mergo.Merge(&merged, cfg, mergo.WithOverride); err != nil {
		return models.StepConfig{}, fmt.Errorf("failed to merge step configuration: %w", err)
	}

	return merged, nil
}

// stepsFile is the layout of a YAML (or JSON) file declaring several steps.
type stepsFile struct {
	Steps []struct {
		Identifier   string `yaml:"identifier"`
		ProtocolName string `yaml:"protocol_name"`
	} `yaml:"steps"`
}

// LoadStepConfigs reads a file declaring several step configurations under a "steps" key.
func LoadStepConfigs(path string) ([]models.StepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file stepsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	configs := make([]models.StepConfig, 0, len(file.Steps))
	for _, s := range file.Steps {
		cfg, err := MergeDefaults(models.StepConfig{Identifier: s.Identifier, ProtocolName: s.ProtocolName})
		if err != nil {
			return nil, err
		}

		configs = append(configs, cfg)
	}

	return configs, nil
}

// Check returns why cfg is not a valid configuration, or nil.
//
// The identifier must not be used by any other step: occurs must report zero, or one when
// the identifier is the one previously saved for this step. A nil occurs counts as zero.
func Check(cfg models.StepConfig, previousIdentifier string, occurs IdentifierOccurs, resolver ProtocolResolver) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}

	count := 0
	if occurs != nil {
		count = occurs(cfg.Identifier)
	}

	if count != 0 && (count != 1 || previousIdentifier != cfg.Identifier) {
		return fmt.Errorf("%w: %q occurs %d times", ErrIdentifierNotUnique, cfg.Identifier, count)
	}

	if !cfg.IsConfigured() {
		return ErrProtocolNotConfigured
	}

	if resolver != nil {
		if _, ok := resolver.GetByName(cfg.ProtocolName); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProtocol, cfg.ProtocolName)
		}
	}

	return nil
}

// Validate reports whether cfg is a valid configuration. See Check.
func Validate(cfg models.StepConfig, previousIdentifier string, occurs IdentifierOccurs, resolver ProtocolResolver) bool {
	return Check(cfg, previousIdentifier, occurs, resolver) == nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[string]bool

func (r staticResolver) GetByName(name string) (*models.Protocol, bool) {
	if !r[name] {
		return nil, false
	}

	return &models.Protocol{Name: name}, true
}

var catalog = staticResolver{"SimpleScaffold": true}

func occursIn(identifiers ...string) IdentifierOccurs {
	return func(identifier string) int {
		count := 0

		for _, id := range identifiers {
			if id == identifier {
				count++
			}
		}

		return count
	}
}

func TestSerialize_SortedKeysAndIndent(t *testing.T) {
	out, err := Serialize(models.StepConfig{Identifier: "sds", ProtocolName: "SimpleScaffold"})
	require.NoError(t, err)

	assert.Equal(t, "{\n    \"identifier\": \"sds\",\n    \"protocol_name\": \"SimpleScaffold\"\n}", out)
}

func TestDeserialize_RoundTrip(t *testing.T) {
	cfg := models.StepConfig{Identifier: "sds", ProtocolName: "SimpleScaffold"}

	out, err := Serialize(cfg)
	require.NoError(t, err)

	loaded, err := Deserialize(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDeserialize_PartialRecordsMergeIntoDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.StepConfig
	}{
		{
			name:     "empty object",
			input:    `{}`,
			expected: models.DefaultStepConfig(),
		},
		{
			name:     "identifier only",
			input:    `{"identifier": "legacy"}`,
			expected: models.StepConfig{Identifier: "legacy", ProtocolName: models.UnconfiguredProtocol},
		},
		{
			name:     "protocol only",
			input:    `{"protocol_name": "SimpleScaffold"}`,
			expected: models.StepConfig{ProtocolName: "SimpleScaffold"},
		},
		{
			name:     "unknown keys are ignored",
			input:    `{"identifier": "sds", "protocol_name": "SimpleScaffold", "colour": "red"}`,
			expected: models.StepConfig{Identifier: "sds", ProtocolName: "SimpleScaffold"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Deserialize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestDeserialize_InvalidJSON(t *testing.T) {
	_, err := Deserialize(`{"identifier": `)
	assert.Error(t, err)
}

func TestCheck_IdentifierUniqueness(t *testing.T) {
	cfg := models.StepConfig{Identifier: "sds", ProtocolName: "SimpleScaffold"}

	tests := []struct {
		name     string
		previous string
		occurs   IdentifierOccurs
		valid    bool
	}{
		{"new identifier", "", occursIn("other"), true},
		{"nil oracle", "", nil, true},
		{"unchanged identifier", "sds", occursIn("sds"), true},
		{"taken by another step", "renamed", occursIn("sds"), false},
		{"duplicated", "sds", occursIn("sds", "sds"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(cfg, tt.previous, tt.occurs, catalog)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrIdentifierNotUnique)
			}

			assert.Equal(t, tt.valid, Validate(cfg, tt.previous, tt.occurs, catalog))
		})
	}
}

func TestCheck_Protocol(t *testing.T) {
	err := Check(models.StepConfig{Identifier: "sds", ProtocolName: models.UnconfiguredProtocol}, "", nil, catalog)
	assert.ErrorIs(t, err, ErrProtocolNotConfigured)

	err = Check(models.StepConfig{Identifier: "sds", ProtocolName: "ComplexScaffold"}, "", nil, catalog)
	assert.ErrorIs(t, err, ErrUnknownProtocol)

	err = Check(models.StepConfig{Identifier: "sds", ProtocolName: "ComplexScaffold"}, "", nil, nil)
	assert.NoError(t, err, "without a resolver any configured name is accepted")

	err = Check(models.StepConfig{Identifier: "a/b", ProtocolName: "SimpleScaffold"}, "", nil, catalog)
	assert.ErrorIs(t, err, ErrMalformedConfig)
}

func TestLoadStepConfigs_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.yaml")
	content := `steps:
  - identifier: scaffold-sds
    protocol_name: SimpleScaffold
  - identifier: draft
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	configs, err := LoadStepConfigs(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, models.StepConfig{Identifier: "scaffold-sds", ProtocolName: "SimpleScaffold"}, configs[0])
	assert.Equal(t, models.StepConfig{Identifier: "draft", ProtocolName: models.UnconfiguredProtocol}, configs[1])
}

func TestLoadStepConfigs_MissingFile(t *testing.T) {
	_, err := LoadStepConfigs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package protocols

import (
	"testing"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestIsValidProtocol(t *testing.T) {
	scaffold := SimpleScaffold()

	withID := func(id string) models.Protocol {
		p := SimpleScaffold()
		p.ID = id

		return p
	}

	withVersion := func(version string) models.Protocol {
		p := SimpleScaffold()
		p.Version = version

		return p
	}

	tests := []struct {
		name      string
		candidate any
		expected  bool
	}{
		{"protocol value", scaffold, true},
		{"protocol pointer", &scaffold, true},
		{"nil protocol pointer", (*models.Protocol)(nil), false},
		{"other family", withID("sds-protocols"), false},
		{"empty family", withID(""), false},
		{"two part version", withVersion("1.0"), true},
		{"prerelease version", withVersion("1.2.0-rc.1"), true},
		{"malformed version", withVersion("latest"), false},
		{"empty version", withVersion(""), false},
		{"decoded record", map[string]any{"id": "sds-protocol", "version": "0.1.0"}, true},
		{"record without version", map[string]any{"id": "sds-protocol"}, false},
		{"record without id", map[string]any{"version": "0.1.0"}, false},
		{"record with numeric version", map[string]any{"id": "sds-protocol", "version": 1}, false},
		{"string", "sds-protocol", false},
		{"nil", nil, false},
		{"slice", []any{"sds-protocol", "0.1.0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidProtocol(tt.candidate))
		})
	}
}

package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(StepConfiguredEvent, "scaffold-sds")

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, StepConfiguredEvent, event.Type)
	assert.Equal(t, "scaffold-sds", event.Identifier)
	assert.False(t, event.Timestamp.IsZero())
	assert.NotNil(t, event.Metadata)

	assert.NotEqual(t, event.ID, NewBaseEvent(StepConfiguredEvent, "scaffold-sds").ID)
}

func TestGetType(t *testing.T) {
	assert.Equal(t, StepConfiguredEvent, StepConfigured{}.GetType())
	assert.Equal(t, StepDeletedEvent, StepDeleted{}.GetType())
	assert.Equal(t, ProtocolPopulatedEvent, ProtocolPopulated{}.GetType())
	assert.Equal(t, ProtocolRejectedEvent, ProtocolRejected{}.GetType())
}

func TestProtocolPopulated_JSONSerialization(t *testing.T) {
	original := &ProtocolPopulated{
		BaseEvent:   NewBaseEvent(ProtocolPopulatedEvent, "scaffold-sds"),
		ExecutionID: "exec-1",
		Protocol: &models.Protocol{
			ID:      models.ProtocolFamily,
			Version: "0.1.0",
			Name:    "Single",
			Inputs:  []models.Slot{models.DictSlot("Provenance", "primary/provenance.json")},
		},
		Assignment: models.Assignment{
			Protocol: "Single",
			Bindings: []models.Binding{{SlotIndex: 0, DataIndex: 0, Value: map[string]any{"k": "v"}}},
		},
		DurationMs: 3,
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"protocol.populated"`)
	assert.Contains(t, string(jsonData), `"identifier":"scaffold-sds"`)
	assert.Contains(t, string(jsonData), `"execution_id":"exec-1"`)

	var deserialized ProtocolPopulated

	require.NoError(t, json.Unmarshal(jsonData, &deserialized))
	assert.Equal(t, original.ID, deserialized.ID)
	assert.Equal(t, original.Protocol.Name, deserialized.Protocol.Name)
	assert.Equal(t, models.SlotTypeDict, deserialized.Protocol.Inputs[0].Type)
	assert.Equal(t, 1, deserialized.Assignment.Len())
}

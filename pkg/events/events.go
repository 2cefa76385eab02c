// Package events defines the notifications emitted while SDS protocol steps are configured and run.
package events

import (
	"time"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/google/uuid"
)

type EventType string

const Topic = "sdsprotocol.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Step configuration events.
	StepConfiguredEvent EventType = "step.configured"
	StepDeletedEvent    EventType = "step.deleted"

	// Step execution events.
	ProtocolPopulatedEvent EventType = "protocol.populated"
	ProtocolRejectedEvent  EventType = "protocol.rejected"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	Identifier string         `json:"identifier"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// StepConfigured is emitted after a step configuration has been validated and saved.
type StepConfigured struct {
	BaseEvent

	PreviousIdentifier string            `json:"previous_identifier,omitempty"`
	Config             models.StepConfig `json:"config"`
}

func (e StepConfigured) GetType() EventType {
	return StepConfiguredEvent
}

type StepDeleted struct {
	BaseEvent
}

func (e StepDeleted) GetType() EventType {
	return StepDeletedEvent
}

// ProtocolPopulated carries the protocol produced by a successful step run.
type ProtocolPopulated struct {
	BaseEvent

	ExecutionID string            `json:"execution_id"`
	Protocol    *models.Protocol  `json:"protocol"`
	Assignment  models.Assignment `json:"assignment"`
	DurationMs  int64             `json:"duration_ms"`
}

func (e ProtocolPopulated) GetType() EventType {
	return ProtocolPopulatedEvent
}

// ProtocolRejected is emitted when the received locations could not be assigned.
type ProtocolRejected struct {
	BaseEvent

	ExecutionID  string `json:"execution_id"`
	ProtocolName string `json:"protocol_name"`
	Candidates   int    `json:"candidates"`
	Error        string `json:"error"`
	DurationMs   int64  `json:"duration_ms"`
}

func (e ProtocolRejected) GetType() EventType {
	return ProtocolRejectedEvent
}

func NewBaseEvent(eventType EventType, identifier string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		Identifier: identifier,
		Metadata:   make(map[string]any),
	}
}

// Package workflow runs saved SDS protocol steps against upstream locations.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/sdsprotocol/pkg/eventbus"
	"github.com/dukex/sdsprotocol/pkg/events"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/nodes/sdsprotocol"
	"github.com/dukex/sdsprotocol/pkg/otelhelper"
	"github.com/dukex/sdsprotocol/pkg/persistence"
	"github.com/dukex/sdsprotocol/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dukex/sdsprotocol/pkg/workflow"

var (
	// ErrStepNotConfigured is returned when the saved step has no protocol chosen.
	ErrStepNotConfigured = errors.New("step has no protocol configured")

	// ErrLocationsRejected is returned when the locations cannot be assigned to the protocol.
	ErrLocationsRejected = errors.New("locations rejected by protocol")
)

// upstreamNodeID names the source of the locations handed to the step.
const upstreamNodeID = "upstream"

// Result is the outcome of one successful step run.
type Result struct {
	ExecutionID string            `json:"execution_id"`
	Identifier  string            `json:"identifier"`
	Protocol    *models.Protocol  `json:"protocol"`
	Assignment  models.Assignment `json:"assignment"`
}

type Executor struct {
	registry  *registry.Registry
	steps     persistence.StepRepository
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewExecutor creates a step executor. publisher may be nil.
func NewExecutor(registry *registry.Registry, steps persistence.StepRepository, publisher eventbus.EventPublisher, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		registry:  registry,
		steps:     steps,
		publisher: publisher,
		tracer:    otel.Tracer(tracerName),
		logger:    logger.With("module", "step_executor"),
	}
}

// Execute runs the step saved under identifier with the given ordered locations.
func (e *Executor) Execute(ctx context.Context, identifier string, locations []any) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "step.execute",
		attribute.String(otelhelper.StepIdentifierKey, identifier),
		attribute.Int(otelhelper.CandidatesKey, len(locations)),
	)
	defer span.End()

	result, err := e.execute(ctx, span, identifier, locations)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.Int(otelhelper.FilledInputsKey, result.Assignment.Len()))

	return result, nil
}

func (e *Executor) execute(ctx context.Context, span trace.Span, identifier string, locations []any) (*Result, error) {
	logger := e.logger.With("identifier", identifier, "candidates", len(locations))
	logger.Info("Starting execution of step")

	cfg, err := e.steps.Get(ctx, identifier)
	if err != nil {
		logger.Error("Failed to fetch step", "error", err)

		return nil, fmt.Errorf("failed to fetch step %s: %w", identifier, err)
	}

	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", ErrStepNotConfigured, identifier)
	}

	node, err := e.registry.CreateNode(ctx, sdsprotocol.NodeType, identifier, sdsprotocol.ConfigMap(*cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create node for step %s: %w", identifier, err)
	}

	executionCtx := models.ExecutionContext{
		ID:          uuid.New().String(),
		WorkflowID:  identifier,
		NodeResults: make(map[string]models.NodeResult),
		Variables:   make(map[string]any),
		Metadata:    map[string]any{"protocol_name": cfg.ProtocolName},
	}

	logger = logger.With("execution_id", executionCtx.ID, "protocol", cfg.ProtocolName)

	span.SetAttributes(
		attribute.String(otelhelper.ExecutionIDKey, executionCtx.ID),
		attribute.String(otelhelper.ProtocolNameKey, cfg.ProtocolName),
	)

	started := time.Now()

	results, err := node.Execute(executionCtx, map[string]models.NodeResult{
		sdsprotocol.InputPortLocations: {
			NodeID:    upstreamNodeID,
			Data:      map[string]any{sdsprotocol.LocationsKey: locations},
			Status:    string(models.NodeStatusSuccess),
			Timestamp: started.UTC(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute step %s: %w", identifier, err)
	}

	duration := time.Since(started).Milliseconds()

	if output, ok := results[sdsprotocol.OutputPortProtocol]; ok {
		populated, _ := output.Data["protocol"].(*models.Protocol)
		assignment, _ := output.Data["assignment"].(models.Assignment)

		e.publish(ctx, identifier, events.ProtocolPopulated{
			BaseEvent:   events.NewBaseEvent(events.ProtocolPopulatedEvent, identifier),
			ExecutionID: executionCtx.ID,
			Protocol:    populated,
			Assignment:  assignment,
			DurationMs:  duration,
		})

		logger.Info("Completed execution of step", "filled", assignment.Len())

		return &Result{
			ExecutionID: executionCtx.ID,
			Identifier:  identifier,
			Protocol:    populated,
			Assignment:  assignment,
		}, nil
	}

	reason := "no output produced"
	if output, ok := results[sdsprotocol.OutputPortError]; ok {
		reason = output.Error
	}

	e.publish(ctx, identifier, events.ProtocolRejected{
		BaseEvent:    events.NewBaseEvent(events.ProtocolRejectedEvent, identifier),
		ExecutionID:  executionCtx.ID,
		ProtocolName: cfg.ProtocolName,
		Candidates:   len(locations),
		Error:        reason,
		DurationMs:   duration,
	})

	logger.Info("Step rejected locations", "reason", reason)

	return nil, fmt.Errorf("%w: %s", ErrLocationsRejected, reason)
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

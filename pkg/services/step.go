package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/sdsprotocol/pkg/config"
	"github.com/dukex/sdsprotocol/pkg/eventbus"
	"github.com/dukex/sdsprotocol/pkg/events"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/persistence"
)

// Step manages the saved configurations of SDS protocol steps.
type Step struct {
	persistence persistence.Persistence
	catalog     config.ProtocolResolver
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

// NewStep creates a new step service. publisher may be nil.
func NewStep(persistence persistence.Persistence, catalog config.ProtocolResolver, publisher eventbus.EventPublisher, logger *slog.Logger) *Step {
	if logger == nil {
		logger = slog.Default()
	}

	return &Step{
		persistence: persistence,
		catalog:     catalog,
		publisher:   publisher,
		logger:      logger.With("module", "step_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Step) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Get returns the configuration saved under identifier.
func (s *Step) Get(ctx context.Context, identifier string) (*models.StepConfig, error) {
	return s.persistence.StepRepository().Get(ctx, identifier)
}

// List returns every saved configuration ordered by identifier.
func (s *Step) List(ctx context.Context) ([]*models.StepConfig, error) {
	return s.persistence.StepRepository().List(ctx)
}

// Save validates cfg and stores it. previousIdentifier is the identifier the step was last
// saved under, or empty for a new step. A changed identifier renames the stored step.
func (s *Step) Save(ctx context.Context, previousIdentifier string, cfg models.StepConfig) (*models.StepConfig, error) {
	if cfg.Identifier == "" {
		return nil, NewValidationError("Save", "identifier_required", "step identifier is required", ErrIdentifierRequired)
	}

	merged, err := config.MergeDefaults(cfg)
	if err != nil {
		return nil, err
	}

	repo := s.persistence.StepRepository()

	count, err := repo.IdentifierOccurs(ctx, merged.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to check identifier %s: %w", merged.Identifier, err)
	}

	occurs := func(string) int { return count }

	if err := config.Check(merged, previousIdentifier, occurs, s.catalog); err != nil {
		return nil, &ServiceError{Op: "Save", Code: "invalid_step_config", Err: err}
	}

	if err := repo.Save(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to save step %s: %w", merged.Identifier, err)
	}

	if previousIdentifier != "" && previousIdentifier != merged.Identifier {
		if err := repo.Delete(ctx, previousIdentifier); err != nil {
			return nil, fmt.Errorf("failed to remove renamed step %s: %w", previousIdentifier, err)
		}
	}

	s.logger.Info("Step saved", "identifier", merged.Identifier, "protocol", merged.ProtocolName)

	s.publish(ctx, merged.Identifier, events.StepConfigured{
		BaseEvent:          events.NewBaseEvent(events.StepConfiguredEvent, merged.Identifier),
		PreviousIdentifier: previousIdentifier,
		Config:             merged,
	})

	return &merged, nil
}

// Delete removes the configuration saved under identifier.
func (s *Step) Delete(ctx context.Context, identifier string) error {
	repo := s.persistence.StepRepository()

	if _, err := repo.Get(ctx, identifier); err != nil {
		return err
	}

	if err := repo.Delete(ctx, identifier); err != nil {
		return fmt.Errorf("failed to delete step %s: %w", identifier, err)
	}

	s.logger.Info("Step deleted", "identifier", identifier)

	s.publish(ctx, identifier, events.StepDeleted{
		BaseEvent: events.NewBaseEvent(events.StepDeletedEvent, identifier),
	})

	return nil
}

func (s *Step) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

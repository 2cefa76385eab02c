// Package persistence provides the storage abstraction for SDS protocol step configurations.
package persistence

import (
	"context"

	"github.com/dukex/sdsprotocol/pkg/models"
)

// StepRepository stores step configurations keyed by their workflow-unique identifier.
type StepRepository interface {
	Get(ctx context.Context, identifier string) (*models.StepConfig, error)
	List(ctx context.Context) ([]*models.StepConfig, error)
	Save(ctx context.Context, cfg *models.StepConfig) error
	Delete(ctx context.Context, identifier string) error

	// IdentifierOccurs counts the stored steps using identifier.
	IdentifierOccurs(ctx context.Context, identifier string) (int, error)
}

type Persistence interface {
	StepRepository() StepRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

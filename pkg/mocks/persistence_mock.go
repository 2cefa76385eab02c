package mocks

import (
	"context"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	Steps *MockStepRepository
}

// NewMockPersistence creates a MockPersistence backed by a fresh MockStepRepository.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{Steps: &MockStepRepository{}}
}

func (m *MockPersistence) StepRepository() persistence.StepRepository {
	return m.Steps
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockStepRepository is a mock implementation of persistence.StepRepository interface.
type MockStepRepository struct {
	mock.Mock
}

func (m *MockStepRepository) Get(ctx context.Context, identifier string) (*models.StepConfig, error) {
	args := m.Called(ctx, identifier)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.StepConfig), args.Error(1)
}

func (m *MockStepRepository) List(ctx context.Context) ([]*models.StepConfig, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.StepConfig), args.Error(1)
}

func (m *MockStepRepository) Save(ctx context.Context, cfg *models.StepConfig) error {
	args := m.Called(ctx, cfg)

	return args.Error(0)
}

func (m *MockStepRepository) Delete(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)

	return args.Error(0)
}

func (m *MockStepRepository) IdentifierOccurs(ctx context.Context, identifier string) (int, error) {
	args := m.Called(ctx, identifier)

	return args.Int(0), args.Error(1)
}

var (
	_ persistence.Persistence    = (*MockPersistence)(nil)
	_ persistence.StepRepository = (*MockStepRepository)(nil)
)

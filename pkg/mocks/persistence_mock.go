package mocks

import (
	"context"

	"github.com/guidely/automator/pkg/models"
	"github.com/guidely/automator/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockAutomatorRepository is a mock implementation of
// persistence.AutomatorRepository interface.
type MockAutomatorRepository struct {
	mock.Mock
}

func (m *MockAutomatorRepository) ListAutomators(ctx context.Context, opts persistence.ListAutomatorsOptions) (*persistence.AutomatorListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.AutomatorListResult), args.Error(1)
}

func (m *MockAutomatorRepository) GetByID(ctx context.Context, id string) (*models.Automator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Automator), args.Error(1)
}

func (m *MockAutomatorRepository) Save(ctx context.Context, automator *models.Automator) error {
	args := m.Called(ctx, automator)

	return args.Error(0)
}

func (m *MockAutomatorRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence
// interface.
type MockPersistence struct {
	mock.Mock

	AutomatorRepo *MockAutomatorRepository
}

// NewMockPersistence creates a persistence mock with a wired repository mock.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{AutomatorRepo: &MockAutomatorRepository{}}
}

func (m *MockPersistence) AutomatorRepository() persistence.AutomatorRepository {
	return m.AutomatorRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

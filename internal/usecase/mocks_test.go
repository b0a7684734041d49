package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) CreateBatch(ctx context.Context, leads []*entity.Lead) (int, error) {
	args := m.Called(ctx, leads)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id, userID string) (*entity.Lead, error) {
	args := m.Called(ctx, id, userID)
	if lead, ok := args.Get(0).(*entity.Lead); ok {
		return lead, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id, userID string, fields map[string]any) (*entity.Lead, error) {
	args := m.Called(ctx, id, userID, fields)
	if lead, ok := args.Get(0).(*entity.Lead); ok {
		return lead, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, userID string, filter LeadFilter) ([]entity.Lead, int, error) {
	args := m.Called(ctx, userID, filter)
	if leads, ok := args.Get(0).([]entity.Lead); ok {
		return leads, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Create(ctx context.Context, interaction *entity.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractionRepository) ListByLead(ctx context.Context, leadID, userID string) ([]entity.Interaction, error) {
	args := m.Called(ctx, leadID, userID)
	if interactions, ok := args.Get(0).([]entity.Interaction); ok {
		return interactions, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyLeadChanged(ctx context.Context, event LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

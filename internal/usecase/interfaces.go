package usecase

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// LeadRepository is owner-scoped by construction: every lookup or write
// carries the principal id, and a miss for any reason is entity.ErrNotFound.
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	CreateBatch(ctx context.Context, leads []*entity.Lead) (int, error)
	FindByID(ctx context.Context, id, userID string) (*entity.Lead, error)
	// Update applies only the given columns and returns the stored row.
	Update(ctx context.Context, id, userID string, fields map[string]any) (*entity.Lead, error)
	Delete(ctx context.Context, id, userID string) error
	List(ctx context.Context, userID string, filter LeadFilter) ([]entity.Lead, int, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, interaction *entity.Interaction) error
	ListByLead(ctx context.Context, leadID, userID string) ([]entity.Interaction, error)
}

// LeadEvent is the best-effort realtime notification emitted after a
// successful mutation. Consumers use it as a cache-freshness hint only.
type LeadEvent struct {
	Action string `json:"action"` // created, updated, deleted, imported
	LeadID string `json:"lead_id,omitempty"`
	UserID string `json:"user_id"`
}

type ChangeNotifier interface {
	NotifyLeadChanged(ctx context.Context, event LeadEvent) error
}

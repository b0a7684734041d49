package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// memLeadRepo is an in-memory LeadRepository with the same ownership
// opacity as the SQL one: a foreign id misses exactly like a missing id.
type memLeadRepo struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{leads: make(map[string]*entity.Lead)}
}

func (r *memLeadRepo) Create(_ context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[lead.ID] = lead.Clone()
	return nil
}

func (r *memLeadRepo) CreateBatch(_ context.Context, leads []*entity.Lead) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lead := range leads {
		r.leads[lead.ID] = lead.Clone()
	}
	return len(leads), nil
}

func (r *memLeadRepo) FindByID(_ context.Context, id, userID string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok || lead.UserID != userID {
		return nil, entity.ErrNotFound
	}
	return lead.Clone(), nil
}

func (r *memLeadRepo) Update(_ context.Context, id, userID string, fields map[string]any) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok || lead.UserID != userID {
		return nil, entity.ErrNotFound
	}

	for col, val := range fields {
		var ptr *string
		if s, ok := val.(string); ok {
			v := s
			ptr = &v
		}
		switch col {
		case "name":
			lead.Name = *ptr
		case "email":
			lead.Email = ptr
		case "phone":
			lead.Phone = ptr
		case "company":
			lead.Company = ptr
		case "status":
			lead.Status = *ptr
		case "notes":
			lead.Notes = ptr
		}
	}
	return lead.Clone(), nil
}

func (r *memLeadRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok || lead.UserID != userID {
		return entity.ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *memLeadRepo) List(_ context.Context, userID string, filter usecase.LeadFilter) ([]entity.Lead, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Lead
	for _, lead := range r.leads {
		if lead.UserID != userID {
			continue
		}
		out = append(out, *lead.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

type memInteractionRepo struct {
	mu           sync.Mutex
	interactions []entity.Interaction
}

func (r *memInteractionRepo) Create(_ context.Context, interaction *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interactions = append(r.interactions, *interaction)
	return nil
}

func (r *memInteractionRepo) ListByLead(_ context.Context, leadID, userID string) ([]entity.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Interaction
	for _, i := range r.interactions {
		if i.LeadID == leadID && i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/sanitize"
	"github.com/xavierca1/ligue-crm/internal/validate"
)

const (
	defaultListLimit = 50
	maxSearchLimit   = 100
)

// LeadUseCase runs the mutation pipeline for leads: validate, sanitize,
// ownership-scoped persist, then best-effort realtime notify. Auth and rate
// limiting run earlier, as HTTP middleware.
type LeadUseCase struct {
	Repo     LeadRepository
	Notifier ChangeNotifier
}

func NewLeadUseCase(repo LeadRepository, notifier ChangeNotifier) *LeadUseCase {
	return &LeadUseCase{Repo: repo, Notifier: notifier}
}

func (uc *LeadUseCase) Create(ctx context.Context, userID string, in LeadInput) (*entity.Lead, error) {
	errs := validate.Fields(in.values(), validate.LeadRules, false)
	if errs.Any() {
		return nil, apperr.Validation("Validation failed", errs)
	}

	name := sanitize.String(in.Name.Value)
	if name == nil {
		// Passed length checks but sanitized away to nothing.
		return nil, apperr.Validation("Validation failed", map[string][]string{"name": {"is required"}})
	}

	lead := entity.NewLead(userID, *name, in.Status.Value)
	lead.Email = sanitizeOpt(in.Email, sanitize.Email)
	lead.Phone = sanitizeOpt(in.Phone, sanitize.Phone)
	lead.Company = sanitizeOpt(in.Company, sanitize.String)
	lead.Notes = sanitizeOpt(in.Notes, sanitize.Text)

	if err := uc.Repo.Create(ctx, lead); err != nil {
		log.Printf("database error creating lead: %v", err)
		return nil, apperr.Database("Failed to create lead")
	}

	uc.notify(ctx, LeadEvent{Action: "created", LeadID: lead.ID, UserID: userID})
	return lead, nil
}

func (uc *LeadUseCase) Get(ctx context.Context, userID, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id, userID)
	if err == entity.ErrNotFound {
		return nil, apperr.NotFound("Lead")
	}
	if err != nil {
		log.Printf("database error fetching lead: %v", err)
		return nil, apperr.Database("Failed to fetch lead")
	}
	return lead, nil
}

// Update applies a partial payload: only keys present in the body change,
// explicit null clears an optional field. An empty payload is a valid no-op
// that does not touch the row (updated_at stays put).
func (uc *LeadUseCase) Update(ctx context.Context, userID, id string, in LeadInput) (*entity.Lead, error) {
	errs := validate.Fields(in.values(), validate.LeadRules, true)
	if errs.Any() {
		return nil, apperr.Validation("Validation failed", errs)
	}

	fields := map[string]any{}
	if in.Name.Set {
		name := sanitize.String(in.Name.Value)
		if name == nil {
			return nil, apperr.Validation("Validation failed", map[string][]string{"name": {"is required"}})
		}
		fields["name"] = *name
	}
	if in.Email.Set {
		fields["email"] = ptrValue(sanitizeOpt(in.Email, sanitize.Email))
	}
	if in.Phone.Set {
		fields["phone"] = ptrValue(sanitizeOpt(in.Phone, sanitize.Phone))
	}
	if in.Company.Set {
		fields["company"] = ptrValue(sanitizeOpt(in.Company, sanitize.String))
	}
	if in.Status.Set {
		fields["status"] = in.Status.Value
	}
	if in.Notes.Set {
		fields["notes"] = ptrValue(sanitizeOpt(in.Notes, sanitize.Text))
	}

	if len(fields) == 0 {
		return uc.Get(ctx, userID, id)
	}

	lead, err := uc.Repo.Update(ctx, id, userID, fields)
	if err == entity.ErrNotFound {
		return nil, apperr.NotFound("Lead")
	}
	if err != nil {
		log.Printf("database error updating lead: %v", err)
		return nil, apperr.Database("Failed to update lead")
	}

	uc.notify(ctx, LeadEvent{Action: "updated", LeadID: id, UserID: userID})
	return lead, nil
}

// Delete removes the lead and, through the repository transaction, all of
// its interactions.
func (uc *LeadUseCase) Delete(ctx context.Context, userID, id string) error {
	err := uc.Repo.Delete(ctx, id, userID)
	if err == entity.ErrNotFound {
		return apperr.NotFound("Lead")
	}
	if err != nil {
		log.Printf("database error deleting lead: %v", err)
		return apperr.Database("Failed to delete lead")
	}

	uc.notify(ctx, LeadEvent{Action: "deleted", LeadID: id, UserID: userID})
	return nil
}

func (uc *LeadUseCase) List(ctx context.Context, userID string, filter LeadFilter) (*LeadPage, error) {
	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Query = ""

	leads, total, err := uc.Repo.List(ctx, userID, filter)
	if err != nil {
		log.Printf("database error listing leads: %v", err)
		return nil, apperr.Database("Failed to fetch leads")
	}

	return &LeadPage{Leads: leads, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Search is List plus a sanitized free-text term; limit is clamped to 100
// regardless of what the client asked for.
func (uc *LeadUseCase) Search(ctx context.Context, userID string, filter LeadFilter) (*SearchPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if q := sanitize.String(filter.Query); q != nil {
		filter.Query = *q
	} else {
		filter.Query = ""
	}
	if c := sanitize.String(filter.Company); c != nil {
		filter.Company = *c
	} else {
		filter.Company = ""
	}

	leads, total, err := uc.Repo.List(ctx, userID, filter)
	if err != nil {
		log.Printf("database error searching leads: %v", err)
		return nil, apperr.Database("Failed to search leads")
	}

	return &SearchPage{
		LeadPage: LeadPage{Leads: leads, Total: total, Limit: filter.Limit, Offset: filter.Offset},
		Query:    filter.Query,
	}, nil
}

func (uc *LeadUseCase) notify(ctx context.Context, event LeadEvent) {
	if uc.Notifier == nil {
		return
	}
	if err := uc.Notifier.NotifyLeadChanged(ctx, event); err != nil {
		// Realtime is a freshness hint, never a correctness dependency.
		log.Printf("failed to publish lead event: %v", err)
	}
}

func sanitizeOpt(o OptString, fn func(string) *string) *string {
	if !o.Set || !o.Valid {
		return nil
	}
	return fn(o.Value)
}

// ptrValue flattens *string into a driver-friendly any: nil for NULL.
func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

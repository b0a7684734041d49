package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/sanitize"
	"github.com/xavierca1/ligue-crm/internal/validate"
)

type InteractionUseCase struct {
	Repo     InteractionRepository
	LeadRepo LeadRepository
}

func NewInteractionUseCase(repo InteractionRepository, leadRepo LeadRepository) *InteractionUseCase {
	return &InteractionUseCase{Repo: repo, LeadRepo: leadRepo}
}

// Create logs an interaction against an existing owned lead. The ownership
// check is an explicit lookup scoped by (id, owner): a lead that exists
// under a different owner responds exactly like a nonexistent one.
func (uc *InteractionUseCase) Create(ctx context.Context, userID string, in InteractionInput) (*entity.Interaction, error) {
	errs := validate.Fields(in.values(), validate.InteractionRules, false)
	if errs.Any() {
		return nil, apperr.Validation("Validation failed", errs)
	}

	description := sanitize.Text(in.Description.Value)
	if description == nil {
		return nil, apperr.Validation("Validation failed", map[string][]string{"description": {"is required"}})
	}

	if _, err := uc.LeadRepo.FindByID(ctx, in.LeadID.Value, userID); err != nil {
		if err == entity.ErrNotFound {
			return nil, apperr.NotFound("Lead")
		}
		log.Printf("database error checking lead ownership: %v", err)
		return nil, apperr.Database("Failed to create interaction")
	}

	interaction := entity.NewInteraction(userID, in.LeadID.Value, in.Type.Value, *description)
	if err := uc.Repo.Create(ctx, interaction); err != nil {
		log.Printf("database error creating interaction: %v", err)
		return nil, apperr.Database("Failed to create interaction")
	}

	return interaction, nil
}

func (uc *InteractionUseCase) ListByLead(ctx context.Context, userID, leadID string) (*InteractionPage, error) {
	if _, err := uc.LeadRepo.FindByID(ctx, leadID, userID); err != nil {
		if err == entity.ErrNotFound {
			return nil, apperr.NotFound("Lead")
		}
		log.Printf("database error checking lead ownership: %v", err)
		return nil, apperr.Database("Failed to fetch interactions")
	}

	interactions, err := uc.Repo.ListByLead(ctx, leadID, userID)
	if err != nil {
		log.Printf("database error fetching interactions: %v", err)
		return nil, apperr.Database("Failed to fetch interactions")
	}

	return &InteractionPage{Interactions: interactions, Total: len(interactions)}, nil
}

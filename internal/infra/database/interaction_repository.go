package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type InteractionRepository struct {
	DB *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *entity.Interaction) error {
	query := `
		INSERT INTO interactions (id, lead_id, user_id, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		interaction.ID,
		interaction.LeadID,
		interaction.UserID,
		interaction.Type,
		interaction.Description,
		interaction.CreatedAt,
	)
	return err
}

func (r *InteractionRepository) ListByLead(ctx context.Context, leadID, userID string) ([]entity.Interaction, error) {
	query := `
		SELECT id, lead_id, user_id, type, description, created_at
		FROM interactions
		WHERE lead_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interactions := []entity.Interaction{}
	for rows.Next() {
		var it entity.Interaction
		if err := rows.Scan(&it.ID, &it.LeadID, &it.UserID, &it.Type, &it.Description, &it.CreatedAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, it)
	}
	return interactions, rows.Err()
}

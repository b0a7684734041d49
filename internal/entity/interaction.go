package entity

import (
	"time"

	"github.com/google/uuid"
)

// Interaction types.
const (
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMeeting = "meeting"
	InteractionNote    = "note"
	InteractionOther   = "other"
)

var InteractionTypes = []string{
	InteractionCall, InteractionEmail, InteractionMeeting, InteractionNote, InteractionOther,
}

// Interaction is a timestamped log entry against exactly one Lead. It is
// never updated in place; it goes away when the parent lead is deleted.
type Interaction struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewInteraction(userID, leadID, typ, description string) *Interaction {
	return &Interaction{
		ID:          uuid.New().String(),
		LeadID:      leadID,
		UserID:      userID,
		Type:        typ,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

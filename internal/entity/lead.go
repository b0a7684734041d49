package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a row does not exist or is
// owned by another principal. The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

// Lead statuses, in pipeline order.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusPending   = "pending"
	StatusLost      = "lost"
	StatusWon       = "won"
)

var LeadStatuses = []string{
	StatusNew, StatusContacted, StatusQualified, StatusPending, StatusLost, StatusWon,
}

type Lead struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead assigns the server-side fields. Owner comes from the authenticated
// principal, never from the payload.
func NewLead(userID, name, status string) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Optional fields are re-pointered so the copy
// never aliases the original.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	c.Email = cloneStr(l.Email)
	c.Phone = cloneStr(l.Phone)
	c.Company = cloneStr(l.Company)
	c.Notes = cloneStr(l.Notes)
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

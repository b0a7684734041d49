package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/auth"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type InteractionHandler struct {
	UC *usecase.InteractionUseCase
}

func NewInteractionHandler(uc *usecase.InteractionUseCase) *InteractionHandler {
	return &InteractionHandler{UC: uc}
}

// Create handles POST /interactions.
func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var in usecase.InteractionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("Invalid JSON", nil))
		return
	}

	interaction, err := h.UC.Create(r.Context(), principal.ID, in)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, interaction)
}

// List handles GET /interactions?lead_id=.
func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	leadID := r.URL.Query().Get("lead_id")
	if leadID == "" {
		apperr.WriteHTTP(w, apperr.Validation("lead_id parameter is required", nil))
		return
	}

	page, err := h.UC.ListByLead(r.Context(), principal.ID, leadID)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadHandler struct {
	UC *usecase.LeadUseCase
}

func NewLeadHandler(uc *usecase.LeadUseCase) *LeadHandler {
	return &LeadHandler{UC: uc}
}

// Create handles POST /leads.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var in usecase.LeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("Invalid JSON", nil))
		return
	}

	lead, err := h.UC.Create(r.Context(), principal.ID, in)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	middleware.RecordLeadCreated("api")
	writeJSON(w, http.StatusCreated, lead)
}

// Get handles GET /leads/{id}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	lead, err := h.UC.Get(r.Context(), principal.ID, chi.URLParam(r, "id"))
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// Update handles PATCH /leads/{id}.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var in usecase.LeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("Invalid JSON", nil))
		return
	}

	lead, err := h.UC.Update(r.Context(), principal.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /leads/{id}.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	if err := h.UC.Delete(r.Context(), principal.ID, chi.URLParam(r, "id")); err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// List handles GET /leads.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	page, err := h.UC.List(r.Context(), principal.ID, filterFromQuery(r))
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /leads/search.
func (h *LeadHandler) Search(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	filter := filterFromQuery(r)
	filter.Query = r.URL.Query().Get("query")

	page, err := h.UC.Search(r.Context(), principal.ID, filter)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func filterFromQuery(r *http.Request) usecase.LeadFilter {
	q := r.URL.Query()

	filter := usecase.LeadFilter{
		Company:  q.Get("company"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}

	if status := q.Get("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, s)
			}
		}
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	return filter
}

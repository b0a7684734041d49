package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-crm/internal/auth"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/ratelimit"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// newTestServer wires the real middleware chain and handlers over in-memory
// repositories. Two tokens, two principals.
func newTestServer(t *testing.T, limiter ratelimit.Limiter, cfg ratelimit.Config) *httptest.Server {
	t.Helper()

	leadRepo := newMemLeadRepo()
	interactionRepo := &memInteractionRepo{}

	leadUC := usecase.NewLeadUseCase(leadRepo, nil)
	interactionUC := usecase.NewInteractionUseCase(interactionRepo, leadRepo)

	leadHandler := NewLeadHandler(leadUC)
	interactionHandler := NewInteractionHandler(interactionUC)

	verifier := auth.NewStaticVerifier(map[string]string{
		"tok-alice": "user-alice",
		"tok-bob":   "user-bob",
	})

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier))
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, cfg))
		}
		r.Post("/leads", leadHandler.Create)
		r.Get("/leads", leadHandler.List)
		r.Get("/leads/search", leadHandler.Search)
		r.Get("/leads/{id}", leadHandler.Get)
		r.Patch("/leads/{id}", leadHandler.Update)
		r.Delete("/leads/{id}", leadHandler.Delete)
		r.Post("/interactions", interactionHandler.Create)
		r.Get("/interactions", interactionHandler.List)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doReq(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	assert.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type errBody struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (b errBody) fieldErrors(t *testing.T) map[string][]string {
	t.Helper()
	fields := map[string][]string{}
	assert.NoError(t, json.Unmarshal(b.Error.Details, &fields))
	return fields
}

func TestLeadLifecycle(t *testing.T) {
	srv := newTestServer(t, nil, ratelimit.Config{})

	resp := doReq(t, http.MethodPost, srv.URL+"/leads", "tok-alice", map[string]any{
		"name":   "  Maria Silva ",
		"email":  "Maria@Example.COM",
		"status": "new",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[entity.Lead](t, resp)
	assert.Equal(t, "Maria Silva", created.Name)
	assert.Equal(t, "maria@example.com", *created.Email)

	resp = doReq(t, http.MethodGet, srv.URL+"/leads/"+created.ID, "tok-alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[entity.Lead](t, resp)
	assert.Equal(t, created.ID, fetched.ID)

	resp = doReq(t, http.MethodPatch, srv.URL+"/leads/"+created.ID, "tok-alice", map[string]any{
		"status": "contacted",
		"notes":  nil,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[entity.Lead](t, resp)
	assert.Equal(t, "contacted", updated.Status)
	assert.Equal(t, "Maria Silva", updated.Name)
	assert.Nil(t, updated.Notes)

	resp = doReq(t, http.MethodGet, srv.URL+"/leads", "tok-alice", nil)
	page := decode[usecase.LeadPage](t, resp)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "contacted", page.Leads[0].Status)

	resp = doReq(t, http.MethodDelete, srv.URL+"/leads/"+created.ID, "tok-alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ok := decode[map[string]bool](t, resp)
	assert.True(t, ok["success"])

	resp = doReq(t, http.MethodGet, srv.URL+"/leads/"+created.ID, "tok-alice", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidationErrorBody(t *testing.T) {
	srv := newTestServer(t, nil, ratelimit.Config{})

	resp := doReq(t, http.MethodPost, srv.URL+"/leads", "tok-alice", map[string]any{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[errBody](t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	fields := body.fieldErrors(t)
	assert.Contains(t, fields["name"], "is required")
	assert.Contains(t, fields["email"], "is invalid")
}

func TestInvalidJSONIsRejected(t *testing.T) {
	srv := newTestServer(t, nil, ratelimit.Config{})

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/leads", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer tok-alice")
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errBody](t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv := newTestServer(t, nil, ratelimit.Config{})

	resp := doReq(t, http.MethodGet, srv.URL+"/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[errBody](t, resp)
	assert.Equal(t, "AUTH_ERROR", body.Error.Code)
}

// Another principal's lead answers exactly like a missing one, for reads
// and writes alike.
func TestForeignLeadIsOpaque(t *testing.T) {
	srv := newTestServer(t, nil, ratelimit.Config{})

	resp := doReq(t, http.MethodPost, srv.URL+"/leads", "tok-alice", map[string]any{
		"name": "Maria", "status": "new",
	})
	created := decode[entity.Lead](t, resp)

	for _, probe := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPatch, map[string]any{"status": "won"}},
		{http.MethodDelete, nil},
	} {
		resp := doReq(t, probe.method, srv.URL+"/leads/"+created.ID, "tok-bob", probe.body)
		body := decode[errBody](t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, probe.method)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	}

	// Still intact for the owner.
	resp = doReq(t, http.MethodGet, srv.URL+"/leads/"+created.ID, "tok-alice", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInteractionEndpoints(t *testing.T) {
	srv := newTestServer(t, nil, ratelimit.Config{})

	resp := doReq(t, http.MethodPost, srv.URL+"/leads", "tok-alice", map[string]any{
		"name": "Maria", "status": "new",
	})
	lead := decode[entity.Lead](t, resp)

	resp = doReq(t, http.MethodPost, srv.URL+"/interactions", "tok-alice", map[string]any{
		"lead_id":     lead.ID,
		"type":        "call",
		"description": "Initial contact",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, srv.URL+"/interactions?lead_id="+lead.ID, "tok-alice", nil)
	page := decode[usecase.InteractionPage](t, resp)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "Initial contact", page.Interactions[0].Description)

	// Missing lead_id is a validation error, not an empty list.
	resp = doReq(t, http.MethodGet, srv.URL+"/interactions", "tok-alice", nil)
	body := decode[errBody](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)

	// Foreign lead: no interactions leak.
	resp = doReq(t, http.MethodGet, srv.URL+"/interactions?lead_id="+lead.ID, "tok-bob", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimitRejectsOverQuota(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	srv := newTestServer(t, limiter, ratelimit.Config{MaxRequests: 2, WindowSeconds: 60})

	for i := 0; i < 2; i++ {
		resp := doReq(t, http.MethodGet, srv.URL+"/leads", "tok-alice", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := doReq(t, http.MethodGet, srv.URL+"/leads", "tok-alice", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	body := decode[errBody](t, resp)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Error.Code)

	// Another principal has its own counter.
	resp = doReq(t, http.MethodGet, srv.URL+"/leads", "tok-bob", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

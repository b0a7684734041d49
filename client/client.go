// Package client is the Go half of the wire contract: an HTTP client with
// capped-exponential-backoff retry, a query-keyed cache and an optimistic
// mutation coordinator that keeps the cache consistent with server state
// under concurrent, possibly-failing mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	retry   retryPolicy
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithRetry(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = retryPolicy(policy) }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   http.DefaultClient,
		retry:   defaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LeadDraft is the full-create payload. Optional fields marshal away when
// nil; create has no null-vs-absent distinction.
type LeadDraft struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Status  string  `json:"status"`
	Notes   *string `json:"notes,omitempty"`
}

// LeadPatch is the partial-update payload. Key present with nil value means
// "clear the field"; key absent means "no change".
type LeadPatch map[string]any

type InteractionDraft struct {
	LeadID      string `json:"lead_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type ListParams struct {
	Statuses []string
	Company  string
	DateFrom string
	DateTo   string
	Query    string
	Limit    int
	Offset   int
}

type LeadPage struct {
	Leads  []entity.Lead `json:"leads"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Query  string        `json:"query,omitempty"`
}

type InteractionPage struct {
	Interactions []entity.Interaction `json:"interactions"`
	Total        int                  `json:"total"`
}

type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

type ImportResult struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

func (c *Client) CreateLead(ctx context.Context, draft LeadDraft) (*entity.Lead, error) {
	var lead entity.Lead
	if err := c.do(ctx, http.MethodPost, "/leads", draft, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *Client) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	var lead entity.Lead
	if err := c.do(ctx, http.MethodGet, "/leads/"+id, nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *Client) UpdateLead(ctx context.Context, id string, patch LeadPatch) (*entity.Lead, error) {
	var lead entity.Lead
	if err := c.do(ctx, http.MethodPatch, "/leads/"+id, patch, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/leads/"+id, nil, nil)
}

func (c *Client) ListLeads(ctx context.Context, params ListParams) (*LeadPage, error) {
	var page LeadPage
	if err := c.do(ctx, http.MethodGet, "/leads?"+params.encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) SearchLeads(ctx context.Context, params ListParams) (*LeadPage, error) {
	var page LeadPage
	if err := c.do(ctx, http.MethodGet, "/leads/search?"+params.encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateInteraction(ctx context.Context, draft InteractionDraft) (*entity.Interaction, error) {
	var interaction entity.Interaction
	if err := c.do(ctx, http.MethodPost, "/interactions", draft, &interaction); err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (c *Client) ListInteractions(ctx context.Context, leadID string) (*InteractionPage, error) {
	var page InteractionPage
	if err := c.do(ctx, http.MethodGet, "/interactions?lead_id="+url.QueryEscape(leadID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ImportLeads uploads a CSV or XLSX file. Imports are not idempotent, so
// there is no automatic retry here.
func (c *Client) ImportLeads(ctx context.Context, filename string, file io.Reader) (*ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/leads/import", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Network("Network request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var result ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportLeads downloads the export file and returns its raw bytes.
func (c *Client) ExportLeads(ctx context.Context, format string) ([]byte, error) {
	var data []byte
	err := c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leads/export?format="+url.QueryEscape(format), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return apperr.Network("Network request failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return decodeError(resp)
		}
		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// do runs one JSON request through the retry policy. Only retryable
// failures (transport, 5xx, 429) are attempted again.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	return c.retry.Do(ctx, func() error {
		var reader io.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return apperr.Network("Network request failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return decodeError(resp)
		}
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// decodeError rebuilds the taxonomy error from the wire shape.
func decodeError(resp *http.Response) error {
	var body struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Code == "" {
		return apperr.New(apperr.KindInternal, fmt.Sprintf("unexpected response (status %d)", resp.StatusCode))
	}

	e := apperr.FromCode(body.Error.Code, body.Error.Message)
	if e.Kind == apperr.KindValidation && len(body.Error.Details) > 0 {
		var fields map[string][]string
		if json.Unmarshal(body.Error.Details, &fields) == nil {
			e.FieldErrors = fields
		}
	}
	return e
}

func (p ListParams) encode() string {
	q := url.Values{}
	if len(p.Statuses) > 0 {
		q.Set("status", strings.Join(p.Statuses, ","))
	}
	if p.Company != "" {
		q.Set("company", p.Company)
	}
	if p.DateFrom != "" {
		q.Set("dateFrom", p.DateFrom)
	}
	if p.DateTo != "" {
		q.Set("dateTo", p.DateTo)
	}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return q.Encode()
}

package client

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Coordinator layers optimistic mutations over the cache. Updates and
// deletes follow a fixed sequence: cancel in-flight refreshes for the
// affected keys, snapshot them, apply the predicted result, then either
// confirm with the server response or restore the snapshot on failure.
type Coordinator struct {
	api   *Client
	cache *Cache
}

func NewCoordinator(api *Client, cache *Cache) *Coordinator {
	return &Coordinator{api: api, cache: cache}
}

func (co *Coordinator) Cache() *Cache { return co.cache }

// Leads is a read-through list fetch: cached pages are served as-is, misses
// go to the server and populate the cache.
func (co *Coordinator) Leads(ctx context.Context, params ListParams) (*LeadPage, error) {
	key := listKey(params)
	if v, ok := co.cache.Get(key); ok {
		return v.(*LeadPage), nil
	}

	ctx, done := co.cache.TrackRefresh(ctx, key)
	defer done()

	page, err := co.api.ListLeads(ctx, params)
	if err != nil {
		return nil, err
	}
	co.cache.Set(key, page)
	return page, nil
}

func (co *Coordinator) SearchLeads(ctx context.Context, params ListParams) (*LeadPage, error) {
	key := searchKey(params)
	if v, ok := co.cache.Get(key); ok {
		return v.(*LeadPage), nil
	}

	ctx, done := co.cache.TrackRefresh(ctx, key)
	defer done()

	page, err := co.api.SearchLeads(ctx, params)
	if err != nil {
		return nil, err
	}
	co.cache.Set(key, page)
	return page, nil
}

func (co *Coordinator) Lead(ctx context.Context, id string) (*entity.Lead, error) {
	key := leadKey(id)
	if v, ok := co.cache.Get(key); ok {
		return v.(*entity.Lead), nil
	}

	ctx, done := co.cache.TrackRefresh(ctx, key)
	defer done()

	lead, err := co.api.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	co.cache.Set(key, lead)
	return lead, nil
}

func (co *Coordinator) Interactions(ctx context.Context, leadID string) (*InteractionPage, error) {
	key := interactionsKey(leadID)
	if v, ok := co.cache.Get(key); ok {
		return v.(*InteractionPage), nil
	}

	ctx, done := co.cache.TrackRefresh(ctx, key)
	defer done()

	page, err := co.api.ListInteractions(ctx, leadID)
	if err != nil {
		return nil, err
	}
	co.cache.Set(key, page)
	return page, nil
}

// CreateLead has no optimistic step: the server assigns the ID, so there is
// nothing coherent to predict. The new lead is cached and list pages are
// invalidated once the server confirms.
func (co *Coordinator) CreateLead(ctx context.Context, draft LeadDraft) (*entity.Lead, error) {
	lead, err := co.api.CreateLead(ctx, draft)
	if err != nil {
		return nil, err
	}
	co.cache.Set(leadKey(lead.ID), lead)
	co.cache.DeletePrefix(listKeyPrefix)
	co.cache.DeletePrefix(searchKeyPrefix)
	return lead, nil
}

// UpdateLead applies the patch to every cached view of the lead before the
// request is sent. On failure the snapshot is restored byte-for-byte; on
// success the server's lead replaces the prediction and list pages refetch.
func (co *Coordinator) UpdateLead(ctx context.Context, id string, patch LeadPatch) (*entity.Lead, error) {
	detail := leadKey(id)
	co.cache.CancelRefresh(detail)
	co.cache.CancelRefreshPrefix(listKeyPrefix)
	co.cache.CancelRefreshPrefix(searchKeyPrefix)

	snap := co.cache.Snapshot(co.affectedKeys(detail)...)

	co.cache.update(detail, func(v any) any {
		lead := v.(*entity.Lead).Clone()
		applyPatch(lead, patch)
		return lead
	})
	co.eachListPage(func(page *LeadPage) {
		for i := range page.Leads {
			if page.Leads[i].ID == id {
				applyPatch(&page.Leads[i], patch)
			}
		}
	})

	lead, err := co.api.UpdateLead(ctx, id, patch)
	if err != nil {
		co.cache.Restore(snap)
		return nil, err
	}

	co.cache.Set(detail, lead)
	co.cache.DeletePrefix(listKeyPrefix)
	co.cache.DeletePrefix(searchKeyPrefix)
	return lead, nil
}

// DeleteLead removes the lead from every cached view before the request is
// sent, restoring everything if the server rejects it.
func (co *Coordinator) DeleteLead(ctx context.Context, id string) error {
	detail := leadKey(id)
	co.cache.CancelRefresh(detail, interactionsKey(id))
	co.cache.CancelRefreshPrefix(listKeyPrefix)
	co.cache.CancelRefreshPrefix(searchKeyPrefix)

	keys := append(co.affectedKeys(detail), interactionsKey(id))
	snap := co.cache.Snapshot(keys...)

	co.cache.Delete(detail)
	co.cache.Delete(interactionsKey(id))
	co.eachListPage(func(page *LeadPage) {
		kept := page.Leads[:0]
		for i := range page.Leads {
			if page.Leads[i].ID != id {
				kept = append(kept, page.Leads[i])
			}
		}
		if len(kept) < len(page.Leads) {
			page.Leads = kept
			page.Total--
		}
	})

	if err := co.api.DeleteLead(ctx, id); err != nil {
		co.cache.Restore(snap)
		return err
	}

	co.cache.DeletePrefix(listKeyPrefix)
	co.cache.DeletePrefix(searchKeyPrefix)
	return nil
}

// CreateInteraction confirms before touching the cache, then drops the
// lead's interaction page so the next read refetches.
func (co *Coordinator) CreateInteraction(ctx context.Context, draft InteractionDraft) (*entity.Interaction, error) {
	interaction, err := co.api.CreateInteraction(ctx, draft)
	if err != nil {
		return nil, err
	}
	co.cache.Delete(interactionsKey(draft.LeadID))
	return interaction, nil
}

// affectedKeys is the detail key plus every cached list and search page.
func (co *Coordinator) affectedKeys(detail string) []string {
	keys := []string{detail}
	keys = append(keys, co.cache.Keys(listKeyPrefix)...)
	keys = append(keys, co.cache.Keys(searchKeyPrefix)...)
	return keys
}

func (co *Coordinator) eachListPage(fn func(*LeadPage)) {
	for _, prefix := range []string{listKeyPrefix, searchKeyPrefix} {
		for _, k := range co.cache.Keys(prefix) {
			co.cache.update(k, func(v any) any {
				page := cloneValue(v).(*LeadPage)
				fn(page)
				return page
			})
		}
	}
}

// applyPatch mirrors the server's partial-update semantics: present keys
// overwrite, nil values clear, absent keys leave the field alone.
func applyPatch(lead *entity.Lead, patch LeadPatch) {
	for field, raw := range patch {
		val, _ := raw.(string)
		ptr := func() *string {
			if raw == nil {
				return nil
			}
			v := val
			return &v
		}

		switch field {
		case "name":
			lead.Name = val
		case "email":
			lead.Email = ptr()
		case "phone":
			lead.Phone = ptr()
		case "company":
			lead.Company = ptr()
		case "status":
			lead.Status = val
		case "notes":
			lead.Notes = ptr()
		}
	}
	lead.UpdatedAt = time.Now().UTC()
}

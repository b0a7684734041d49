package client

import (
	"context"
	"strings"
	"sync"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Cache keys. List keys carry the encoded query string so each distinct
// filter combination caches independently.
const (
	leadKeyPrefix         = "lead:"
	listKeyPrefix         = "leads?"
	searchKeyPrefix       = "leads/search?"
	interactionsKeyPrefix = "interactions:"
)

func leadKey(id string) string             { return leadKeyPrefix + id }
func listKey(p ListParams) string          { return listKeyPrefix + p.encode() }
func searchKey(p ListParams) string        { return searchKeyPrefix + p.encode() }
func interactionsKey(leadID string) string { return interactionsKeyPrefix + leadID }

// Cache is a query-keyed store for server responses. Values are deep-cloned
// on both Set and Get so callers and optimistic writers never alias each
// other's data.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]any
	inflight map[string]map[int]context.CancelFunc
	nextID   int
}

func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]any),
		inflight: make(map[string]map[int]context.CancelFunc),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cloneValue(value)
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeletePrefix drops every entry whose key starts with prefix. Used to
// invalidate all cached list pages after a mutation.
func (c *Cache) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Snapshot captures the current state of the given keys, including whether
// each key was present at all. Restore puts exactly that state back: present
// keys get their old value, absent keys are deleted again.
type Snapshot struct {
	states map[string]snapState
}

type snapState struct {
	present bool
	value   any
}

func (c *Cache) Snapshot(keys ...string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{states: make(map[string]snapState, len(keys))}
	for _, k := range keys {
		v, ok := c.entries[k]
		if ok {
			snap.states[k] = snapState{present: true, value: cloneValue(v)}
		} else {
			snap.states[k] = snapState{present: false}
		}
	}
	return snap
}

func (c *Cache) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, s := range snap.states {
		if s.present {
			c.entries[k] = cloneValue(s.value)
		} else {
			delete(c.entries, k)
		}
	}
}

// TrackRefresh derives a cancelable context for an in-flight fetch of key.
// CancelRefresh aborts all tracked fetches for a key so a stale response
// cannot overwrite an optimistic write that happened after the fetch began.
func (c *Cache) TrackRefresh(ctx context.Context, key string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	if c.inflight[key] == nil {
		c.inflight[key] = make(map[int]context.CancelFunc)
	}
	c.inflight[key][id] = cancel
	c.mu.Unlock()

	done := func() {
		cancel()
		c.mu.Lock()
		delete(c.inflight[key], id)
		if len(c.inflight[key]) == 0 {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}
	return ctx, done
}

func (c *Cache) CancelRefresh(keys ...string) {
	c.mu.Lock()
	var cancels []context.CancelFunc
	for _, k := range keys {
		for _, cancel := range c.inflight[k] {
			cancels = append(cancels, cancel)
		}
		delete(c.inflight, k)
	}
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (c *Cache) CancelRefreshPrefix(prefix string) {
	c.mu.Lock()
	var cancels []context.CancelFunc
	for k, cfs := range c.inflight {
		if strings.HasPrefix(k, prefix) {
			for _, cancel := range cfs {
				cancels = append(cancels, cancel)
			}
			delete(c.inflight, k)
		}
	}
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Keys returns the cached keys matching prefix.
func (c *Cache) Keys(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// update applies fn to the entry under the lock. fn receives the live value
// (not a clone) and must not retain it.
func (c *Cache) update(key string, fn func(v any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return
	}
	c.entries[key] = fn(v)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *entity.Lead:
		return t.Clone()
	case *LeadPage:
		if t == nil {
			return (*LeadPage)(nil)
		}
		c := *t
		c.Leads = make([]entity.Lead, len(t.Leads))
		for i := range t.Leads {
			c.Leads[i] = *t.Leads[i].Clone()
		}
		return &c
	case *InteractionPage:
		if t == nil {
			return (*InteractionPage)(nil)
		}
		c := *t
		c.Interactions = append([]entity.Interaction(nil), t.Interactions...)
		return &c
	default:
		return v
	}
}

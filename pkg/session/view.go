// Package session holds the per-process view state: query text, active
// categories and the visible list derived from them.
package session

import (
	"log/slog"
	"sync"

	"cctvmap/pkg/logging"
	"cctvmap/pkg/model"
	"cctvmap/pkg/registry"
	"cctvmap/pkg/search"
)

// Snapshot is the view state after a recompute. Treat it as read-only.
type Snapshot struct {
	Query            string           `json:"query"`
	ActiveCategories []model.Category `json:"active_categories"`
	Visible          []model.Location `json:"visible"`
	Target           *model.Point     `json:"target"`
	Distances        search.Distances `json:"distances,omitempty"`
	Total            int              `json:"total"`
	Version          uint64           `json:"version"`
}

// View owns the registry and the filter inputs. Every mutation recomputes the
// visible list inside one critical section and notifies subscribers.
type View struct {
	mu         sync.RWMutex
	reg        *registry.Registry
	categories []model.Category
	active     map[model.Category]bool
	query      string
	snap       Snapshot

	subs   map[int]chan Snapshot
	nextID int
	logger *slog.Logger
}

// NewView creates a view over reg with every category of the configured set active.
func NewView(reg *registry.Registry, categories []model.Category) *View {
	v := &View{
		reg:        reg,
		categories: append([]model.Category(nil), categories...),
		active:     make(map[model.Category]bool, len(categories)),
		subs:       make(map[int]chan Snapshot),
		logger:     slog.With("component", "view"),
	}
	for _, c := range categories {
		v.active[c] = true
	}
	v.recompute()
	return v
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap
}

// Categories returns the configured category set in order.
func (v *View) Categories() []model.Category {
	return append([]model.Category(nil), v.categories...)
}

// Registry returns the underlying registry for read access.
func (v *View) Registry() *registry.Registry {
	return v.reg
}

// SetQuery replaces the query text.
func (v *View) SetQuery(text string) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.query = text
	return v.recompute()
}

// ToggleCategory flips c in the active set. Categories outside the configured set are ignored.
func (v *View) ToggleCategory(c model.Category) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !c.In(v.categories) {
		return v.snap
	}
	v.active[c] = !v.active[c]
	return v.recompute()
}

// SetActiveCategories replaces the active set. Unknown categories are dropped.
func (v *View) SetActiveCategories(cats []model.Category) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.active = make(map[model.Category]bool, len(v.categories))
	for _, c := range cats {
		if c.In(v.categories) {
			v.active[c] = true
		}
	}
	return v.recompute()
}

// ResetFilters re-activates every category. The query is kept.
func (v *View) ResetFilters() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, c := range v.categories {
		v.active[c] = true
	}
	return v.recompute()
}

// ToggleEnabled flips the enabled flag of a location. Unknown ids leave the state unchanged.
func (v *View) ToggleEnabled(id string) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.reg.ToggleEnabled(id) {
		return v.snap
	}
	return v.recompute()
}

// Reload swaps in a new dataset. Filters and query are kept.
func (v *View) Reload(records []model.Location) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.reg.Load(records)
	return v.recompute()
}

// Subscribe returns a channel receiving each new snapshot and a cancel func.
// A slow subscriber only sees the latest snapshot.
func (v *View) Subscribe() (<-chan Snapshot, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	ch := make(chan Snapshot, 1)
	v.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.subs, id)
			close(ch)
		})
	}
}

// recompute must be called with mu held for writing.
func (v *View) recompute() Snapshot {
	records, version := v.reg.Snapshot()
	active := v.activeList()
	res := search.Search(records, v.query, active)

	v.snap = Snapshot{
		Query:            v.query,
		ActiveCategories: active,
		Visible:          res.Visible,
		Target:           res.Target,
		Distances:        res.Distances,
		Total:            len(records),
		Version:          version,
	}
	logging.Trace(v.logger, "View recomputed", "query", v.query, "active", len(active), "visible", len(res.Visible))

	for _, ch := range v.subs {
		publish(ch, v.snap)
	}
	return v.snap
}

func (v *View) activeList() []model.Category {
	out := make([]model.Category, 0, len(v.categories))
	for _, c := range v.categories {
		if v.active[c] {
			out = append(out, c)
		}
	}
	return out
}

// publish never blocks: a pending unread snapshot is replaced.
func publish(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Package registry holds the ordered set of location records shown on the map.
package registry

import (
	"log/slog"
	"sync"

	"cctvmap/pkg/model"
)

// CategoryCount is the per-category tally used by the filter bar badges.
type CategoryCount struct {
	Total   int `json:"total"`
	Enabled int `json:"enabled"`
}

// Registry is an ordered collection of locations keyed by id.
// Load swaps the whole dataset under the write lock, so readers never see a partial load.
type Registry struct {
	mu      sync.RWMutex
	records []model.Location
	index   map[string]int
	version uint64
	logger  *slog.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		index:  make(map[string]int),
		logger: slog.With("component", "registry"),
	}
}

// Load replaces the dataset. Records are copied in; the caller keeps ownership of its slice.
// Records should be validated beforehand (see dataset.Validate). A duplicate id keeps the
// first record's index entry.
func (r *Registry) Load(records []model.Location) {
	recs := make([]model.Location, len(records))
	copy(recs, records)

	idx := make(map[string]int, len(recs))
	for i := range recs {
		if _, dup := idx[recs[i].ID]; dup {
			r.logger.Warn("Duplicate location id", "id", recs[i].ID)
			continue
		}
		idx[recs[i].ID] = i
	}

	r.mu.Lock()
	r.records = recs
	r.index = idx
	r.version++
	v := r.version
	r.mu.Unlock()

	r.logger.Info("Locations loaded", "count", len(recs), "version", v)
}

// ToggleEnabled flips the enabled flag of the record with the given id.
// Unknown ids are a no-op and return false.
func (r *Registry) ToggleEnabled(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.records[i].Enabled = !r.records[i].Enabled
	r.version++
	return true
}

// All returns a copy of every record in insertion order.
func (r *Registry) All() []model.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Location, len(r.records))
	copy(out, r.records)
	return out
}

// Get returns the record with the given id.
func (r *Registry) Get(id string) (model.Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return model.Location{}, false
	}
	return r.records[i], true
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Counts tallies total and enabled records per category.
func (r *Registry) Counts() map[model.Category]CategoryCount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[model.Category]CategoryCount)
	for i := range r.records {
		c := counts[r.records[i].Category]
		c.Total++
		if r.records[i].Enabled {
			c.Enabled++
		}
		counts[r.records[i].Category] = c
	}
	return counts
}

// Version increases on every Load and every successful toggle.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Snapshot returns a copy of the records together with the version they belong to.
func (r *Registry) Snapshot() ([]model.Location, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Location, len(r.records))
	copy(out, r.records)
	return out, r.version
}

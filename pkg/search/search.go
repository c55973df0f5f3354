// Package search filters and ranks locations for the map sidebar.
package search

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"cctvmap/pkg/coords"
	"cctvmap/pkg/model"
)

// Result is the visible subset for a query.
// When the query parses as a coordinate, Target is set, Visible is sorted by
// distance to it and Distances holds the matching distance for each entry.
type Result struct {
	Visible   []model.Location `json:"visible"`
	Target    *model.Point     `json:"target"`
	Distances Distances        `json:"distances,omitempty"`
}

// Distances encodes non-finite entries as null. They only occur for target
// coordinates too large for float64.
type Distances []float64

func (d Distances) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(d))
	for i := range d {
		if !math.IsInf(d[i], 0) && !math.IsNaN(d[i]) {
			out[i] = &d[i]
		}
	}
	return json.Marshal(out)
}

// Distance is the Euclidean distance between two world points.
func Distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Search restricts records to the active categories, then either ranks them by
// distance (coordinate query) or filters them by substring (anything else).
// It never fails and never mutates records.
func Search(records []model.Location, query string, active []model.Category) Result {
	if len(active) == 0 {
		return Result{Visible: []model.Location{}}
	}

	filtered := make([]model.Location, 0, len(records))
	for i := range records {
		if records[i].Category.In(active) {
			filtered = append(filtered, records[i])
		}
	}

	if target, ok := coords.ParseQuery(query); ok {
		return rank(filtered, target)
	}
	return Result{Visible: match(filtered, query)}
}

func rank(records []model.Location, target model.Point) Result {
	type scored struct {
		loc  model.Location
		dist float64
	}
	items := make([]scored, len(records))
	for i := range records {
		items[i] = scored{loc: records[i], dist: Distance(records[i].Coordinates, target)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].dist < items[j].dist
	})

	res := Result{
		Visible:   make([]model.Location, len(items)),
		Distances: make(Distances, len(items)),
		Target:    &target,
	}
	for i := range items {
		res.Visible[i] = items[i].loc
		res.Distances[i] = items[i].dist
	}
	return res
}

// match keeps records whose name or description contains query (case-insensitive)
// or whose id contains it verbatim. An empty query keeps everything.
func match(records []model.Location, query string) []model.Location {
	if query == "" {
		return records
	}

	q := strings.ToLower(query)
	out := make([]model.Location, 0, len(records))
	for i := range records {
		r := &records[i]
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Description), q) ||
			strings.Contains(r.ID, query) {
			out = append(out, *r)
		}
	}
	return out
}

package api

import (
	"net/http"

	"cctvmap/pkg/session"
	"cctvmap/pkg/theme"
)

// CategoryEntry is one legend row of the filter bar.
type CategoryEntry struct {
	theme.LegendEntry
	Total   int  `json:"total"`
	Enabled int  `json:"enabled"`
	Active  bool `json:"active"`
}

// CategoryHandler serves the legend with record counts.
type CategoryHandler struct {
	view *session.View
}

func NewCategoryHandler(view *session.View) *CategoryHandler {
	return &CategoryHandler{view: view}
}

// Handle handles GET /api/categories.
func (h *CategoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	counts := h.view.Registry().Counts()
	active := h.view.Snapshot().ActiveCategories

	legend := theme.Legend(h.view.Categories())
	out := make([]CategoryEntry, len(legend))
	for i, e := range legend {
		c := counts[e.Category]
		out[i] = CategoryEntry{
			LegendEntry: e,
			Total:       c.Total,
			Enabled:     c.Enabled,
			Active:      e.Category.In(active),
		}
	}
	writeJSON(w, http.StatusOK, out, "categories")
}

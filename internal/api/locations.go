package api

import (
	"net/http"
	"strings"

	"cctvmap/pkg/model"
	"cctvmap/pkg/search"
	"cctvmap/pkg/session"
)

// LocationHandler serves the location records and the stateless search.
type LocationHandler struct {
	view *session.View
}

func NewLocationHandler(view *session.View) *LocationHandler {
	return &LocationHandler{view: view}
}

// HandleList handles GET /api/locations.
func (h *LocationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Registry().All(), "locations")
}

// HandleGet handles GET /api/locations/{id}.
func (h *LocationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	loc, ok := h.view.Registry().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "location not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, loc, "location")
}

// HandleToggle handles POST /api/locations/{id}/toggle. Unknown ids return the
// unchanged snapshot.
func (h *LocationHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.ToggleEnabled(r.PathValue("id")), "snapshot")
}

// HandleSearch handles GET /api/search?q=&categories=a,b.
// An absent categories parameter means every configured category; an empty
// one means none.
func (h *LocationHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	active := h.view.Categories()
	if q.Has("categories") {
		var err error
		active, err = parseCategoryList(q.Get("categories"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, search.Search(h.view.Registry().All(), q.Get("q"), active), "search")
}

func parseCategoryList(raw string) ([]model.Category, error) {
	out := []model.Category{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := model.ParseCategory(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

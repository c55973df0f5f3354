package api

import (
	"encoding/json"
	"net/http"

	"cctvmap/pkg/model"
	"cctvmap/pkg/session"
)

// ViewHandler exposes the shared view state: query text and category filters.
type ViewHandler struct {
	view *session.View
}

func NewViewHandler(view *session.View) *ViewHandler {
	return &ViewHandler{view: view}
}

// QueryRequest is the body of POST /api/view/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// HandleGet handles GET /api/view.
func (h *ViewHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Snapshot(), "snapshot")
}

// HandleQuery handles POST /api/view/query.
func (h *ViewHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.view.SetQuery(req.Query), "snapshot")
}

// HandleToggleCategory handles POST /api/view/categories/{category}/toggle.
// Known categories outside the configured set are a no-op.
func (h *ViewHandler) HandleToggleCategory(w http.ResponseWriter, r *http.Request) {
	c, err := model.ParseCategory(r.PathValue("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.view.ToggleCategory(c), "snapshot")
}

// HandleReset handles POST /api/view/reset.
func (h *ViewHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.ResetFilters(), "snapshot")
}

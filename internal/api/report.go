package api

import (
	"encoding/json"
	"net/http"
	"time"

	"cctvmap/pkg/report"
	"cctvmap/pkg/session"
)

// ReportRequest is the body of POST /api/report.
type ReportRequest struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReportHandler builds footage request commands.
type ReportHandler struct {
	view *session.View
}

func NewReportHandler(view *session.View) *ReportHandler {
	return &ReportHandler{view: view}
}

// Handle handles POST /api/report. The id must name a known location.
func (h *ReportHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID != "" {
		if _, ok := h.view.Registry().Get(req.ID); !ok {
			writeError(w, http.StatusNotFound, "location not found: "+req.ID)
			return
		}
	}

	text, err := report.Footage(req.ID, req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text}, "report")
}

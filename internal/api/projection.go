package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/paulmach/orb"

	"cctvmap/pkg/cluster"
	"cctvmap/pkg/config"
	"cctvmap/pkg/model"
	"cctvmap/pkg/projection"
	"cctvmap/pkg/session"
)

// ProjectionInfo describes the active projection for the map widget.
type ProjectionInfo struct {
	Variant       string       `json:"variant"`
	WorldBounds   [2]orb.Point `json:"world_bounds"`
	DisplayBounds [2]orb.Point `json:"display_bounds"`
	Center        orb.Point    `json:"center"`
	ClusterZoom   int          `json:"cluster_max_zoom"`
}

// ProjectionHandler converts coordinates and clusters the visible markers.
type ProjectionHandler struct {
	proj    projection.Projector
	view    *session.View
	cluster config.ClusterConfig
}

func NewProjectionHandler(proj projection.Projector, view *session.View, cfg config.ClusterConfig) *ProjectionHandler {
	return &ProjectionHandler{proj: proj, view: view, cluster: cfg}
}

// HandleInfo handles GET /api/projection.
func (h *ProjectionHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	disp := projection.DisplayBounds(h.proj, projection.WorldBounds)
	writeJSON(w, http.StatusOK, ProjectionInfo{
		Variant:       h.proj.Name(),
		WorldBounds:   [2]orb.Point{projection.WorldBounds.Min, projection.WorldBounds.Max},
		DisplayBounds: [2]orb.Point{disp.Min, disp.Max},
		Center:        projection.Center(h.proj),
		ClusterZoom:   h.cluster.MaxZoom,
	}, "projection")
}

// HandleToDisplay handles GET /api/projection/display?x=&y= with world coordinates.
func (h *ProjectionHandler) HandleToDisplay(w http.ResponseWriter, r *http.Request) {
	x, y, err := parseXY(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]orb.Point{"display": h.proj.ToDisplay(model.Point{X: x, Y: y})}, "projection")
}

// HandleToWorld handles GET /api/projection/world?x=&y= with display coordinates.
func (h *ProjectionHandler) HandleToWorld(w http.ResponseWriter, r *http.Request) {
	x, y, err := parseXY(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Point{"world": h.proj.ToWorld(orb.Point{x, y})}, "projection")
}

// HandleClusters handles GET /api/clusters?zoom=. Only visible, enabled
// markers are grouped; at or beyond cluster.max_zoom every marker stands alone.
func (h *ProjectionHandler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	zoom := 0
	if v := r.URL.Query().Get("zoom"); v != "" {
		z, err := strconv.Atoi(v)
		if err != nil || z < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid zoom %q", v))
			return
		}
		zoom = z
	}

	snap := h.view.Snapshot()
	markers := make([]cluster.Marker, 0, len(snap.Visible))
	for _, l := range snap.Visible {
		if !l.Enabled {
			continue
		}
		markers = append(markers, cluster.Marker{ID: l.ID, Point: h.proj.ToDisplay(l.Coordinates)})
	}

	cellSize := h.cluster.CellSize
	if zoom >= h.cluster.MaxZoom {
		cellSize = 0
	}
	writeJSON(w, http.StatusOK, cluster.Group(markers, zoom, cellSize), "clusters")
}

// BatchDisplayRequest is the body of POST /api/projection/display.
type BatchDisplayRequest struct {
	Points []model.Point `json:"points"`
}

// HandleBatchToDisplay handles POST /api/projection/display. It projects
// every world point in one request, preserving order.
func (h *ProjectionHandler) HandleBatchToDisplay(w http.ResponseWriter, r *http.Request) {
	var req BatchDisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out := make([]orb.Point, len(req.Points))
	for i, p := range req.Points {
		if !p.IsFinite() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("point #%d is not finite", i+1))
			return
		}
		out[i] = h.proj.ToDisplay(p)
	}
	writeJSON(w, http.StatusOK, map[string][]orb.Point{"display": out}, "projection")
}

func parseXY(r *http.Request) (x, y float64, err error) {
	q := r.URL.Query()
	x, err = parseFinite(q.Get("x"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q", q.Get("x"))
	}
	y, err = parseFinite(q.Get("y"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q", q.Get("y"))
	}
	return x, y, nil
}

// parseFinite rejects NaN and ±Inf, which JSON cannot carry.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value")
	}
	return v, nil
}

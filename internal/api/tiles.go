package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"cctvmap/pkg/tiles"
)

// TileStore is the read side of an MBTiles file.
type TileStore interface {
	Tile(ctx context.Context, z, x, y int) ([]byte, error)
	Metadata(ctx context.Context) (tiles.Metadata, error)
}

// TileHandler serves the map background.
type TileHandler struct {
	store       TileStore
	placeholder bool

	mu          sync.Mutex
	contentType string
}

func NewTileHandler(store TileStore, placeholder bool) *TileHandler {
	return &TileHandler{store: store, placeholder: placeholder}
}

// HandleTile handles GET /tiles/{z}/{x}/{y}. The y segment may carry an
// image extension. Missing tiles are rendered as placeholders when enabled.
func (h *TileHandler) HandleTile(w http.ResponseWriter, r *http.Request) {
	z, errZ := strconv.Atoi(r.PathValue("z"))
	x, errX := strconv.Atoi(r.PathValue("x"))
	yRaw := r.PathValue("y")
	if i := strings.IndexByte(yRaw, '.'); i >= 0 {
		yRaw = yRaw[:i]
	}
	y, errY := strconv.Atoi(yRaw)
	if err := errors.Join(errZ, errX, errY); err != nil {
		http.Error(w, "invalid tile coordinates", http.StatusBadRequest)
		return
	}

	data, err := h.store.Tile(r.Context(), z, x, y)
	switch {
	case errors.Is(err, tiles.ErrTileNotFound):
		if !h.placeholder {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		writeBytes(w, tiles.Placeholder(z, x, y))
		return
	case err != nil:
		slog.Error("Failed to read tile", "z", z, "x", x, "y", y, "error", err)
		http.Error(w, "tile read failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", h.tileContentType(r.Context()))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeBytes(w, data)
}

// tileContentType reads the tile format from metadata once. A failed read
// falls back to PNG and is retried on the next tile.
func (h *TileHandler) tileContentType(ctx context.Context) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.contentType != "" {
		return h.contentType
	}
	md, err := h.store.Metadata(ctx)
	if err != nil {
		slog.Warn("Failed to read tile format, assuming PNG", "error", err)
		return "image/png"
	}
	h.contentType = md.ContentType()
	return h.contentType
}

// HandleMetadata handles GET /tiles/metadata.json.
func (h *TileHandler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := h.store.Metadata(r.Context())
	if err != nil {
		slog.Error("Failed to read tile metadata", "error", err)
		writeError(w, http.StatusInternalServerError, "metadata read failed")
		return
	}
	writeJSON(w, http.StatusOK, md, "tile metadata")
}

func writeBytes(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write tile response", "error", err)
	}
}

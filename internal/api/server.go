package api

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"cctvmap/internal/ui"
	"cctvmap/pkg/config"
	"cctvmap/pkg/version"
)

// NewServer creates and configures the HTTP server.
// tilesH may be nil when no MBTiles background is configured.
func NewServer(cfg config.ServerConfig, locs *LocationHandler, view *ViewHandler, stream *StreamHandler, cats *CategoryHandler, proj *ProjectionHandler, rep *ReportHandler, tilesH *TileHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version and Logs
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 3. Locations
	mux.HandleFunc("GET /api/locations", locs.HandleList)
	mux.HandleFunc("GET /api/locations/{id}", locs.HandleGet)
	mux.HandleFunc("POST /api/locations/{id}/toggle", locs.HandleToggle)
	mux.HandleFunc("GET /api/search", locs.HandleSearch)

	// 4. View State
	mux.HandleFunc("GET /api/view", view.HandleGet)
	mux.HandleFunc("POST /api/view/query", view.HandleQuery)
	mux.HandleFunc("POST /api/view/categories/{category}/toggle", view.HandleToggleCategory)
	mux.HandleFunc("POST /api/view/reset", view.HandleReset)
	mux.HandleFunc("GET /api/view/ws", stream.Handle)

	// 5. Legend
	mux.HandleFunc("GET /api/categories", cats.Handle)

	// 6. Projection and Clusters
	mux.HandleFunc("GET /api/projection", proj.HandleInfo)
	mux.HandleFunc("GET /api/projection/display", proj.HandleToDisplay)
	mux.HandleFunc("POST /api/projection/display", proj.HandleBatchToDisplay)
	mux.HandleFunc("GET /api/projection/world", proj.HandleToWorld)
	mux.HandleFunc("GET /api/clusters", proj.HandleClusters)

	// 7. Footage Report
	mux.HandleFunc("POST /api/report", rep.Handle)

	// 8. Tiles
	if tilesH != nil {
		mux.HandleFunc("GET /tiles/metadata.json", tilesH.HandleMetadata)
		mux.HandleFunc("GET /tiles/{z}/{x}/{y}", tilesH.HandleTile)
	}

	// 9. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Let the response flush first
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// 10. Static Frontend Serving (SPA)
	distFS, err := fs.Sub(ui.DistFS, "dist")
	if err != nil {
		panic(fmt.Sprintf("Failed to subtree dist from embedded assets: %v", err))
	}

	spaFS := &spaFileSystem{root: http.FS(distFS)}
	mux.Handle("/", http.FileServer(spaFS))

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeout),
		WriteTimeout: time.Duration(cfg.WriteTimeout),
		IdleTimeout:  time.Duration(cfg.IdleTimeout),
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": version.Version}, "version")
}

// writeJSON encodes v; what names the payload in the failure log.
func writeJSON(w http.ResponseWriter, status int, v any, what string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode "+what+" response", "error", err)
	}
}

// writeError sends {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg}, "error")
}

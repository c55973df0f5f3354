package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"cctvmap/internal/api"
	"cctvmap/pkg/config"
	"cctvmap/pkg/dataset"
	"cctvmap/pkg/kafkaclient"
	"cctvmap/pkg/logging"
	"cctvmap/pkg/model"
		"cctvmap/pkg/projection"
	"cctvmap/pkg/registry"
	"cctvmap/pkg/reload"
	"cctvmap/pkg/session"
	"cctvmap/pkg/startup"
	"cctvmap/pkg/tiles"
	"cctvmap/pkg/version"
)

var (
	configPath = flag.String("config", "configs/cctvmap.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("CCTV Map Started", "version", version.Version)

	categories, err := appCfg.Categories.Resolve()
	if err != nil {
		return fmt.Errorf("failed to resolve categories: %w", err)
	}
	active, err := appCfg.Categories.Active()
	if err != nil {
		return fmt.Errorf("failed to resolve active categories: %w", err)
	}

	src, err := dataset.NewSource(appCfg.Dataset)
	if err != nil {
		return fmt.Errorf("failed to initialize dataset source: %w", err)
	}
	view, err := initView(ctx, src, categories, active)
	if err != nil {
		return err
	}

	proj, err := projection.New(appCfg.Projection)
	if err != nil {
		return fmt.Errorf("failed to initialize projection: %w", err)
	}

	var tileStore *tiles.MBTiles
	if appCfg.Tiles.Path != "" {
		tileStore, err = tiles.Open(appCfg.Tiles.Path)
		if err != nil {
			slog.Warn("Map tiles not available", "path", appCfg.Tiles.Path, "error", err)
		} else {
			defer tileStore.Close()
		}
	}

	checks := []startup.Check{
		{
			Name: "Dataset",
			Run: func(context.Context) error {
				if view.Registry().Len() == 0 {
					return fmt.Errorf("dataset %s is empty", src.Name())
				}
				return nil
			},
			Critical: true,
		},
	}
	if appCfg.Tiles.Path != "" {
		checks = append(checks, startup.Check{
			Name: "Map Tiles (MBTiles)",
			Run: func(ctx context.Context) error {
				if tileStore == nil {
					return fmt.Errorf("file not found or invalid")
				}
				_, err := tileStore.Metadata(ctx)
				return err
			},
			Critical: false,
		})
	}
	results := startup.Run(ctx, checks)
	if err := startup.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	stopReload, err := startReloaders(ctx, appCfg, src, view, categories)
	if err != nil {
		return err
	}
	defer stopReload()

	var tilesH *api.TileHandler
	if tileStore != nil {
		tilesH = api.NewTileHandler(tileStore, appCfg.Tiles.Placeholder)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(appCfg.Server,
		api.NewLocationHandler(view),
		api.NewViewHandler(view),
		api.NewStreamHandler(view),
		api.NewCategoryHandler(view),
		api.NewProjectionHandler(proj, view, appCfg.Cluster),
		api.NewReportHandler(view),
		tilesH,
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func initView(ctx context.Context, src dataset.Source, categories, active []model.Category) (*session.View, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", src.Name(), err)
	}
	if err := dataset.Validate(records, categories); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", src.Name(), err)
	}

	reg := registry.New()
	reg.Load(records)
	slog.Info("Dataset loaded", "source", src.Name(), "locations", reg.Len())

	view := session.NewView(reg, categories)
	view.SetActiveCategories(active)
	return view, nil
}

// startReloaders wires the configured live-reload paths to the view. The
// returned func stops whatever was started.
func startReloaders(ctx context.Context, cfg *config.Config, src dataset.Source, view *session.View, categories []model.Category) (func(), error) {
	var stops []func()
	stopAll := func() {
		for _, stop := range stops {
			stop()
		}
	}

	if cfg.Reload.Kafka.Enabled {
		s3src, ok := src.(*dataset.S3Source)
		if !ok {
			slog.Warn("Kafka reload requires the s3 dataset source, skipping", "source", src.Name())
		} else {
			consumer := kafkaclient.New(cfg.Reload.Kafka)
			go consumer.Start(ctx)
			go reload.NewBucketWatcher(consumer, s3src, view, categories).Run(ctx)
			stops = append(stops, consumer.Stop)
			slog.Info("Bucket reload started", "topic", cfg.Reload.Kafka.Topic, "brokers", cfg.Reload.Kafka.Brokers)
		}
	}

	if cfg.Reload.File.Enabled {
		fsrc, ok := src.(dataset.FileSource)
		if !ok {
			slog.Warn("File reload requires the file dataset source, skipping", "source", src.Name())
		} else {
			fw, err := reload.NewFileWatcher(fsrc, view, categories, time.Duration(cfg.Reload.File.Interval))
			if err != nil {
				stopAll()
				return nil, fmt.Errorf("failed to initialize file watcher: %w", err)
			}
			go fw.Run(ctx)
			slog.Info("File reload started", "path", fsrc.Path, "interval", time.Duration(cfg.Reload.File.Interval))
		}
	}

	return stopAll, nil
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "id", reqID, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

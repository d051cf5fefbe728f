package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/msomdec/portfolio-api/internal/config"
	"github.com/msomdec/portfolio-api/internal/domain"
	"github.com/msomdec/portfolio-api/internal/handler"
	"github.com/msomdec/portfolio-api/internal/repository/sqlite"
	"github.com/msomdec/portfolio-api/internal/service"
	"github.com/msomdec/portfolio-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	backend, static, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	observer, err := storage.NewPrometheusObserver(cfg.StorageBackend, reg)
	if err != nil {
		return fmt.Errorf("register storage metrics: %w", err)
	}

	uploadService := service.NewUploadService(db.Uploads(), storage.Instrumented(backend, observer))
	orderService := service.NewOrderService(db.Orders())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, uploadService, orderService, static,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(handler.CORS(cfg.CORSAllowedOrigins, mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// newBackend builds the configured storage backend. The local backend also
// returns the directory to serve its files from.
func newBackend(ctx context.Context, cfg *config.Config) (domain.StorageBackend, *handler.StaticFiles, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 client: %w", err)
		}
		backend, err := storage.NewS3Backend(client, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Folder:    cfg.UploadFolder,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 backend: %w", err)
		}
		if cfg.S3CreateBucket {
			if err := backend.EnsureBucket(ctx); err != nil {
				return nil, nil, fmt.Errorf("ensure bucket: %w", err)
			}
		}
		slog.Info("using remote object storage", "bucket", cfg.S3Bucket, "folder", cfg.UploadFolder)
		return backend, nil, nil

	default:
		backend, err := storage.NewLocalBackend(cfg.UploadDir, cfg.UploadServePrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("create local backend: %w", err)
		}
		slog.Info("using local file storage", "dir", backend.Dir(), "prefix", backend.ServePrefix())
		return backend, &handler.StaticFiles{Prefix: backend.ServePrefix(), Dir: backend.Dir()}, nil
	}
}

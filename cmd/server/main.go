package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/config"
	"resume-builder/internal/editor"
	"resume-builder/internal/export"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"
	"resume-builder/internal/render"
	"resume-builder/internal/store"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	infra "resume-builder/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	kv, jobsRepo, closeKV, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	renderer, err := render.NewRenderer()
	if err != nil {
		return err
	}

	var sink export.Sink = export.LocalSink{Dir: cfg.Export.Dir}
	if cfg.MinIO.Enabled() {
		sink, err = export.NewMinioSink(ctx, export.MinioConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
	}
	pipeline := export.NewPipeline(
		infra.NewChromedpRasterizer(cfg.Export.ChromePath, cfg.Export.Scale),
		export.WithMetrics(m),
		export.WithRetry(cfg.Export.RasterAttempts, cfg.Export.RasterBackoff),
		export.WithSink(sink),
	)

	svc := usecase.NewService(usecase.Deps{
		KV:        kv,
		StoreOpts: []store.Option{store.WithMetrics(m)},
		Renderer:  renderer,
		Exporter:  pipeline,
		Jobs:      jobsRepo,
		Assist:    editor.NewAssist(ai.NewClient(cfg.AIServiceURL, cfg.AITimeout), cfg.AITimeout, m),

		IdleTTL:     cfg.SessionIdleTTL,
		MaxSessions: cfg.MaxSessions,
	})

	prom, err := httpadapter.NewPrometheus(reg)
	if err != nil {
		return err
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: httpadapter.ErrorHandler(),
		BodyLimit:    1 << 20,
	})
	app.Use(httpadapter.RequestID())
	app.Use(httpadapter.Logger(log.Logger))
	app.Use(prom.Handler())
	httpadapter.NewHandler(svc).Register(app, reg)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.KVBackend).Msg("server started")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := svc.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("unsaved changes on shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}

// openBackend connects the configured document store. Export history is
// only kept by the SQL backends.
func openBackend(ctx context.Context, cfg *config.AppConfig) (repo.KV, usecase.JobsRepo, func(), error) {
	noop := func() {}
	switch cfg.KVBackend {
	case config.BackendMemory:
		log.Warn().Msg("memory backend: documents are lost on restart")
		return repo.NewMemoryKV(), nil, noop, nil
	case config.BackendRedis:
		client, err := repo.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("redis: %w", err)
		}
		return repo.NewRedisKV(client), nil, func() { _ = client.Close() }, nil
	case config.BackendPostgres, config.BackendSQLite:
		var (
			db      *sql.DB
			err     error
			dialect = repo.Postgres
		)
		if cfg.KVBackend == config.BackendSQLite {
			db, err = infra.OpenSQLite(ctx, cfg.SQLitePath)
			dialect = repo.SQLite
		} else {
			db, err = infra.OpenPostgres(ctx, cfg.DatabaseURL)
		}
		if err != nil {
			return nil, nil, noop, fmt.Errorf("%s: %w", cfg.KVBackend, err)
		}
		if err := migration.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return repo.NewSQLKV(db, dialect), repo.NewExportJobsRepo(db, dialect), func() { _ = db.Close() }, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
}

// jobs-service — Vermont jobs ingestion
//
// Scrapes job boards for Vermont listings on a schedule, normalises salary
// and posting dates, tags listings from a fixed vocabulary and stores them
// in PostgreSQL. Exposes a REST API for querying the stored jobs and for
// triggering an ingestion run, and a gRPC health service.
//
// Runs are single-flight across replicas (Redis lock) and publish
// EVENT_INGESTION_FINISHED to Redis when they complete.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jbelley18/VermontJobs/internal/api"
	"github.com/Jbelley18/VermontJobs/internal/config"
	"github.com/Jbelley18/VermontJobs/internal/db"
	"github.com/Jbelley18/VermontJobs/internal/grpcserver"
	"github.com/Jbelley18/VermontJobs/internal/runs"
	"github.com/Jbelley18/VermontJobs/internal/scheduler"
	"github.com/Jbelley18/VermontJobs/internal/scraper"
	"github.com/Jbelley18/VermontJobs/internal/store"
)

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobs-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[jobs-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[jobs-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[jobs-service] PostgreSQL connected ✓")

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("[jobs-service] Migrations: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[jobs-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[jobs-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[jobs-service] Redis connected ✓")

	// ── Ingestion pipeline ───────────────────────────────────────────────────
	jobStore := store.New(pool)
	ing := cfg.Ingestion

	var sources []scraper.Source
	for _, src := range ing.EnabledSources() {
		sources = append(sources, scraper.NewIndeedSource(scraper.IndeedOptions{
			Name:      src.Name,
			BaseURL:   src.BaseURL,
			DetailURL: src.DetailURL,
			Headers:   src.Headers,
			Throttle:  src.Throttle(),
			Timeout:   cfg.HTTPTimeout,
		}))
	}
	log.Printf("[jobs-service] %d source(s) enabled, %d keyword(s), %d tag(s) from %s",
		len(sources), len(ing.Keywords), len(ing.Tags), cfg.SourcesFile)

	worker := scraper.NewWorker(jobStore, sources, ing.Keywords, ing.Location, ing.Tags)
	launcher := runs.NewLauncher(runs.NewTracker(rdb, cfg.RunLockTTL), worker)

	sched := scheduler.New(launcher, cfg.ScrapeIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[jobs-service] Scheduler: %v", err)
	}

	// ── gRPC health ──────────────────────────────────────────────────────────
	grpcSrv := grpcserver.New(
		jobStore,
		grpcserver.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	)
	go func() {
		if err := grpcSrv.Serve(fmt.Sprintf(":%s", cfg.GRPCPort)); err != nil {
			log.Fatalf("[jobs-service] gRPC server error: %v", err)
		}
	}()
	grpcSrv.MarkServing()
	go grpcSrv.Watch(ctx, 30*time.Second)

	// ── HTTP server ──────────────────────────────────────────────────────────
	h := api.NewHandler(jobStore, launcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[jobs-service] v%s listening on :%s", api.Version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[jobs-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[jobs-service] Shutting down…")
	cancel()
	grpcSrv.Stop()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobs-service] Shutdown error: %v", err)
	}
	if err := launcher.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobs-service] Ingestion run did not stop in time: %v", err)
	}
	log.Println("[jobs-service] Stopped.")
}

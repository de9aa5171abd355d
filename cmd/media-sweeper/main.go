package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stormarchive/timeline-service/internal/config"
	mediaService "github.com/stormarchive/timeline-service/internal/services/media"
	"github.com/stormarchive/timeline-service/internal/storage/postgres"
)

// minObjectAge keeps the sweeper away from objects whose database row
// may still be on its way (an upload in flight when the sweep starts).
const minObjectAge = time.Hour

type MediaSweeper struct {
	storage  *postgres.Postgres
	media    *mediaService.Service
	interval time.Duration
	logger   *slog.Logger
}

func NewMediaSweeper(storage *postgres.Postgres, media *mediaService.Service, interval time.Duration) *MediaSweeper {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &MediaSweeper{
		storage:  storage,
		media:    media,
		interval: interval,
		logger:   logger,
	}
}

func (ms *MediaSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(ms.interval)
	defer ticker.Stop()

	ms.logger.Info("Media sweeper started",
		"interval", ms.interval.String())

	// Run once immediately on startup
	ms.sweepOrphans(ctx)

	for {
		select {
		case <-ctx.Done():
			ms.logger.Info("Media sweeper shutting down")
			return
		case <-ticker.C:
			ms.sweepOrphans(ctx)
		}
	}
}

// sweepOrphans deletes bucket objects no media row references anymore:
// leftovers from best-effort deletes and from uploads whose row insert
// failed partway.
func (ms *MediaSweeper) sweepOrphans(ctx context.Context) {
	startTime := time.Now()

	ms.logger.Info("Starting orphaned media sweep")

	bucketKeys, err := ms.media.ListBucketKeys(ctx)
	if err != nil {
		ms.logger.Error("Failed to list bucket objects",
			"error", err.Error())
		return
	}

	referenced, err := ms.storage.ListObjectKeys()
	if err != nil {
		ms.logger.Error("Failed to list referenced object keys",
			"error", err.Error())
		return
	}

	deleted := 0
	for _, key := range selectOrphans(bucketKeys, referenced, time.Now()) {
		if err := ms.media.DeleteObject(ctx, key); err != nil {
			ms.logger.Error("Failed to delete orphaned object",
				"error", err.Error(),
				"object_key", key)
			continue
		}
		deleted++
	}

	duration := time.Since(startTime)

	ms.logger.Info("Completed orphaned media sweep",
		"objects_deleted", deleted,
		"objects_scanned", len(bucketKeys),
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

// selectOrphans picks the bucket keys no media row references and that
// are old enough that no in-flight upload can still be racing them.
func selectOrphans(bucketKeys map[string]time.Time, referenced []string, now time.Time) []string {
	referencedSet := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		referencedSet[key] = struct{}{}
	}

	var orphans []string
	for key, modified := range bucketKeys {
		if _, ok := referencedSet[key]; ok {
			continue
		}
		if now.Sub(modified) < minObjectAge {
			continue
		}
		orphans = append(orphans, key)
	}
	return orphans
}

func main() {
	// Load config
	cfg := config.MustLoad()

	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	media, err := mediaService.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	sweeper := NewMediaSweeper(storage, media, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go sweeper.Start(ctx)

	<-done
	cancel()

	slog.Info("Media sweeper stopped")
}

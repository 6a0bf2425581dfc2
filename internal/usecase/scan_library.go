package usecase

import (
	"context"
	"log/slog"
	"time"

	"trickplay/internal/domain/ports"
	"trickplay/internal/metrics"
)

// ScanLibrary periodically walks the whole library and backfills any missing
// tile tiers. Ready tiers are skipped by a cheap filesystem probe, so a scan
// over an up-to-date library does no media work.
type ScanLibrary struct {
	Repo     ports.ItemRepository
	Tiles    *GenerateTiles
	Logger   *slog.Logger
	Interval time.Duration
}

func (s ScanLibrary) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s ScanLibrary) scan(ctx context.Context) {
	metrics.ScanRunsTotal.Inc()

	items, err := s.Repo.List(ctx)
	if err != nil {
		s.Logger.Warn("scan: list items failed", slog.String("error", err.Error()))
		return
	}
	if len(items) == 0 {
		return
	}

	s.Logger.Info("scan: checking library", slog.Int("items", len(items)))

	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		if err := s.Tiles.Execute(ctx, item); err != nil {
			s.Logger.Warn("scan: generation failed",
				slog.String("id", string(item.ID)),
				slog.String("error", err.Error()))
		}
	}
}

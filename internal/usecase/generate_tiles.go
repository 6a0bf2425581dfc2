package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"trickplay/internal/domain"
	"trickplay/internal/domain/ports"
	"trickplay/internal/metrics"
	"trickplay/internal/trickplay"
)

const (
	defaultIntervalMs = 10_000
	defaultGridSize   = 10
	defaultWidth      = 320

	framePrefix = "frame_"

	// ignoreSentinel marks the published trickplay folder so library
	// scanners do not classify it as a media sub-item.
	ignoreSentinel = ".ignore"
)

// GenerationEvent describes a phase change of a background generation job.
// Events are delivered to Notify subscribers (the websocket hub).
type GenerationEvent struct {
	ItemID domain.ItemID `json:"itemId"`
	Width  int           `json:"width,omitempty"`
	Phase  string        `json:"phase"`
	Error  string        `json:"error,omitempty"`
}

const (
	PhaseStarted   = "started"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
)

// GenerateTiles produces sprite sheets, playlist and manifest for a library
// item across the configured resolution tiers.
//
// Generation is serialized process-wide: FFmpeg extraction is expensive, and
// one job at a time keeps the host responsive. Readiness is re-checked under
// the lock, so concurrent requests for the same (item, width) coalesce into a
// single extraction and a single publish.
type GenerateTiles struct {
	Extractor ports.FrameExtractor
	Layout    trickplay.Layout
	Logger    *slog.Logger

	Version    string
	Widths     []int
	IntervalMs int
	TileWidth  int
	TileHeight int
	Quality    int
	TempDir    string

	Notify func(GenerationEvent)

	genMu sync.Mutex

	inflightMu sync.Mutex
	inflight   map[domain.ItemID]struct{}
}

// Execute generates any missing tiers for the item. Existing tiers are left
// untouched. A failure on one (source, width) unit does not stop the
// remaining units; the joined error reports everything that failed.
func (uc *GenerateTiles) Execute(ctx context.Context, item domain.LibraryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	var errs []error
	for _, source := range item.MediaSources {
		// Alternate versions carry their own item identity; only the
		// item's own source gets tiles.
		if source.ID != string(item.ID) {
			continue
		}
		if source.VideoStream.Width <= 0 || source.VideoStream.Height <= 0 {
			uc.logger().Warn("skipping source without video dimensions",
				slog.String("id", string(item.ID)),
				slog.String("path", source.Path))
			continue
		}
		for _, width := range uc.widths() {
			if err := uc.ensure(ctx, item, source, width); err != nil {
				uc.logger().Error("tile generation failed",
					slog.String("id", string(item.ID)),
					slog.Int("width", width),
					slog.String("error", err.Error()))
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Trigger schedules a background generation for the item unless one is
// already running. Returns false when the item is already in flight.
func (uc *GenerateTiles) Trigger(item domain.LibraryItem) bool {
	uc.inflightMu.Lock()
	if uc.inflight == nil {
		uc.inflight = make(map[domain.ItemID]struct{})
	}
	if _, busy := uc.inflight[item.ID]; busy {
		uc.inflightMu.Unlock()
		return false
	}
	uc.inflight[item.ID] = struct{}{}
	uc.inflightMu.Unlock()

	go func() {
		defer func() {
			uc.inflightMu.Lock()
			delete(uc.inflight, item.ID)
			uc.inflightMu.Unlock()
		}()
		if err := uc.Execute(context.Background(), item); err != nil {
			uc.logger().Warn("background generation failed",
				slog.String("id", string(item.ID)),
				slog.String("error", err.Error()))
		}
	}()
	return true
}

// InFlight reports whether a background generation is running for the item.
func (uc *GenerateTiles) InFlight(id domain.ItemID) bool {
	uc.inflightMu.Lock()
	defer uc.inflightMu.Unlock()
	_, busy := uc.inflight[id]
	return busy
}

func (uc *GenerateTiles) ensure(ctx context.Context, item domain.LibraryItem, source domain.MediaSource, width int) error {
	if uc.ready(item, width) {
		return nil
	}

	uc.genMu.Lock()
	defer uc.genMu.Unlock()

	// Another job may have published this tier while we waited.
	if uc.ready(item, width) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return uc.generate(ctx, item, source, width)
}

// ready means the tier's playlist is present on disk. The playlist is written
// last inside the staging directory and the directory is published
// atomically, so its presence implies a complete tier.
func (uc *GenerateTiles) ready(item domain.LibraryItem, width int) bool {
	_, ok := uc.Layout.ExistingPlaylistPath(item, width)
	return ok
}

func (uc *GenerateTiles) generate(ctx context.Context, item domain.LibraryItem, source domain.MediaSource, width int) error {
	start := time.Now()
	metrics.GenerationStartsTotal.Inc()
	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()

	uc.notify(GenerationEvent{ItemID: item.ID, Width: width, Phase: PhaseStarted})

	uc.logger().Info("generating tiles",
		slog.String("id", string(item.ID)),
		slog.String("path", source.Path),
		slog.Int("width", width))

	tempRoot := filepath.Join(uc.tempDir(), "trickplay-"+uuid.NewString())
	framesDir := filepath.Join(tempRoot, "frames")
	tilesDir := filepath.Join(tempRoot, "tiles")
	defer os.RemoveAll(tempRoot)

	frames, err := uc.Extractor.ExtractOnInterval(ctx, ports.ExtractRequest{
		InputPath:   source.Path,
		Container:   source.Container,
		VideoStream: source.VideoStream,
		Source:      source,
		IntervalMs:  uc.intervalMs(),
		OutputDir:   framesDir,
		Prefix:      framePrefix,
		Width:       width,
	})
	if err != nil {
		return uc.fail(item, width, "extract", wrapExtractor(err))
	}
	if len(frames) == 0 {
		return uc.fail(item, width, "extract", wrapExtractor(domain.ErrEmptyInput))
	}
	metrics.FramesExtractedTotal.Add(float64(len(frames)))

	result, err := trickplay.Pack(trickplay.PackOptions{
		Frames: frames,
		Dir:    tilesDir,
		Tier: domain.TileManifest{
			Width:      width,
			TileWidth:  uc.tileWidth(),
			TileHeight: uc.tileHeight(),
			Interval:   uc.intervalMs(),
		},
		Quality: uc.Quality,
	})
	if err != nil {
		return uc.fail(item, width, "pack", err)
	}

	dstDir := uc.Layout.TilesDir(item, width)
	if err := publishDir(tilesDir, dstDir); err != nil {
		return uc.fail(item, width, "publish", err)
	}
	if err := writeIgnoreSentinel(filepath.Dir(dstDir)); err != nil {
		return uc.fail(item, width, "publish", err)
	}
	metrics.SheetsWrittenTotal.Add(float64(result.SheetCount))

	// Manifest goes last: it must never advertise a tier whose tiles are
	// not yet live.
	manifestPath := uc.Layout.ManifestPath(item)
	existing, _ := os.ReadFile(manifestPath)
	merged := trickplay.MergeManifest(existing, uc.Version, result.Tier)
	if err := trickplay.WriteManifest(manifestPath, merged); err != nil {
		return uc.fail(item, width, "manifest", err)
	}

	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	uc.notify(GenerationEvent{ItemID: item.ID, Width: width, Phase: PhaseCompleted})

	uc.logger().Info("tiles published",
		slog.String("id", string(item.ID)),
		slog.Int("width", width),
		slog.Int("sheets", result.SheetCount),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (uc *GenerateTiles) fail(item domain.LibraryItem, width int, stage string, err error) error {
	metrics.GenerationFailuresTotal.WithLabelValues(stage).Inc()
	uc.notify(GenerationEvent{ItemID: item.ID, Width: width, Phase: PhaseFailed, Error: err.Error()})
	return err
}

func (uc *GenerateTiles) notify(ev GenerationEvent) {
	if uc.Notify != nil {
		uc.Notify(ev)
	}
}

func (uc *GenerateTiles) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}

func (uc *GenerateTiles) widths() []int {
	if len(uc.Widths) == 0 {
		return []int{defaultWidth}
	}
	return uc.Widths
}

func (uc *GenerateTiles) intervalMs() int {
	if uc.IntervalMs <= 0 {
		return defaultIntervalMs
	}
	return uc.IntervalMs
}

func (uc *GenerateTiles) tileWidth() int {
	if uc.TileWidth <= 0 {
		return defaultGridSize
	}
	return uc.TileWidth
}

func (uc *GenerateTiles) tileHeight() int {
	if uc.TileHeight <= 0 {
		return defaultGridSize
	}
	return uc.TileHeight
}

func (uc *GenerateTiles) tempDir() string {
	if uc.TempDir != "" {
		return uc.TempDir
	}
	return os.TempDir()
}

// writeIgnoreSentinel drops the marker file into the published trickplay
// folder so a host library scanner does not pick the folder up as a season or
// extra when the media folder structure is loose.
func writeIgnoreSentinel(dir string) error {
	path := filepath.Join(dir, ignoreSentinel)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, nil, 0o644)
}

// publishDir moves the staged directory over the canonical location. Rename
// is atomic on the same filesystem; when the temp dir lives on another
// device, fall back to copy then delete.
func publishDir(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyTree(src, dst); err != nil {
		os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

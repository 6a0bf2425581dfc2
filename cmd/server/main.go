package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "trickplay/internal/api/http"
	"trickplay/internal/app"
	"trickplay/internal/metrics"
	mongorepo "trickplay/internal/repository/mongo"
	"trickplay/internal/services/media/ffmpeg"
	"trickplay/internal/services/media/ffprobe"
	"trickplay/internal/telemetry"
	"trickplay/internal/trickplay"
	"trickplay/internal/usecase"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// version is the manifest version stamp; bumped when the tile layout or
// addressing math changes incompatibly.
const version = "1.0.0"

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "trickplay", version)
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "trickplay"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Int("intervalMs", cfg.IntervalMs),
		slog.Any("widths", cfg.Widths),
		slog.Bool("onDemand", cfg.OnDemandGeneration),
		slog.Bool("localMediaFolderSaving", cfg.LocalMediaFolderSaving),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoMonitor := otelmongo.NewMonitor()
	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(mongoMonitor))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := mongorepo.NewRepository(mongoClient, cfg.MongoDatabase, cfg.MongoCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}

	layout := trickplay.Layout{LocalMediaFolderSaving: cfg.LocalMediaFolderSaving}
	extractor := ffmpeg.New(cfg.FFMPEGPath, cfg.FFMPEGThreads)
	prober := ffprobe.New(cfg.FFProbePath)

	tilesUC := &usecase.GenerateTiles{
		Extractor:  extractor,
		Layout:     layout,
		Logger:     logger,
		Version:    version,
		Widths:     cfg.Widths,
		IntervalMs: cfg.IntervalMs,
		TileWidth:  cfg.TileWidth,
		TileHeight: cfg.TileHeight,
		Quality:    cfg.JPEGQuality,
		TempDir:    cfg.TempDir,
	}
	registerUC := usecase.RegisterItem{
		Repo:         repo,
		Probe:        prober,
		Logger:       logger,
		MetadataRoot: cfg.MetadataDir,
	}
	getStateUC := usecase.GetItemState{Repo: repo, Tiles: tilesUC, Layout: layout, Widths: cfg.Widths}
	listStatesUC := usecase.ListItemStates{Repo: repo, Tiles: tilesUC, Layout: layout, Widths: cfg.Widths}
	deleteUC := usecase.DeleteItem{Repo: repo, Layout: layout, Widths: cfg.Widths, Logger: logger}

	handler := apihttp.NewServer(registerUC,
		apihttp.WithRepository(repo),
		apihttp.WithLogger(logger),
		apihttp.WithLayout(layout),
		apihttp.WithTileGenerator(tilesUC),
		apihttp.WithOnDemandGeneration(cfg.OnDemandGeneration),
		apihttp.WithTierWidths(cfg.Widths),
		apihttp.WithGetItemState(getStateUC),
		apihttp.WithListItemStates(listStatesUC),
		apihttp.WithDeleteItem(deleteUC),
		apihttp.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)

	// Generation phase changes go out over the websocket hub.
	tilesUC.Notify = handler.BroadcastGeneration

	if cfg.ScanIntervalMinutes > 0 {
		scanUC := usecase.ScanLibrary{
			Repo:     repo,
			Tiles:    tilesUC,
			Logger:   logger,
			Interval: time.Duration(cfg.ScanIntervalMinutes) * time.Minute,
		}
		go scanUC.Run(rootCtx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

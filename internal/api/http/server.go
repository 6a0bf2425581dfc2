package apihttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"trickplay/internal/domain"
	domainports "trickplay/internal/domain/ports"
	"trickplay/internal/trickplay"
	"trickplay/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RegisterItemUseCase interface {
	Execute(ctx context.Context, input usecase.RegisterItemInput) (domain.LibraryItem, error)
}

type GetItemStateUseCase interface {
	Execute(ctx context.Context, id domain.ItemID) (usecase.ItemState, error)
}

type ListItemStatesUseCase interface {
	Execute(ctx context.Context) ([]usecase.ItemState, error)
}

type DeleteItemUseCase interface {
	Execute(ctx context.Context, id domain.ItemID) error
}

// TileGenerator schedules background tile generation.
type TileGenerator interface {
	Trigger(item domain.LibraryItem) bool
	InFlight(id domain.ItemID) bool
}

type Server struct {
	registerItem   RegisterItemUseCase
	getItem        GetItemStateUseCase
	listItems      ListItemStatesUseCase
	deleteItem     DeleteItemUseCase
	tiles          TileGenerator
	repo           domainports.ItemRepository
	layout         trickplay.Layout
	onDemand       bool
	tierWidths     []int
	allowedOrigins []string
	logger         *slog.Logger
	handler        http.Handler
	events         *eventHub
}

type ServerOption func(*Server)

func WithRepository(repo domainports.ItemRepository) ServerOption {
	return func(s *Server) {
		s.repo = repo
	}
}

func WithGetItemState(uc GetItemStateUseCase) ServerOption {
	return func(s *Server) {
		s.getItem = uc
	}
}

func WithListItemStates(uc ListItemStatesUseCase) ServerOption {
	return func(s *Server) {
		s.listItems = uc
	}
}

func WithDeleteItem(uc DeleteItemUseCase) ServerOption {
	return func(s *Server) {
		s.deleteItem = uc
	}
}

func WithTileGenerator(gen TileGenerator) ServerOption {
	return func(s *Server) {
		s.tiles = gen
	}
}

func WithLayout(layout trickplay.Layout) ServerOption {
	return func(s *Server) {
		s.layout = layout
	}
}

// WithTierWidths restricts tile artifact routes to the configured resolution
// tiers. Requests for other widths answer 404 instead of scheduling work.
// Empty (default) leaves widths unrestricted.
func WithTierWidths(widths []int) ServerOption {
	return func(s *Server) {
		s.tierWidths = widths
	}
}

// WithOnDemandGeneration makes missing-artifact requests schedule a
// background generation before answering 503.
func WithOnDemandGeneration(enabled bool) ServerOption {
	return func(s *Server) {
		s.onDemand = enabled
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted (development mode).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(register RegisterItemUseCase, opts ...ServerOption) *Server {
	s := &Server{
		registerItem: register,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.events = newEventHub(s.logger)
	go s.events.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/items", s.handleItems)
	mux.HandleFunc("/items/", s.handleItemByID)
	mux.HandleFunc("/trickplay/", s.handleTrickplay)
	mux.HandleFunc("/internal/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "trickplay",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/internal/health" && !strings.HasSuffix(p, trickplay.SheetExt)
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &eventClient{
		hub:  s.events,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.events.register <- client
	go client.writePump()
	go client.readPump()
}

// BroadcastGeneration pushes a generation phase change to all connected
// WebSocket clients. Wired as the Notify hook of the generation use case.
func (s *Server) BroadcastGeneration(ev usecase.GenerationEvent) {
	if s.events != nil {
		s.events.Broadcast("generation", ev)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.events != nil {
		s.events.Close()
	}
}

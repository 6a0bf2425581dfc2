package apihttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"trickplay/internal/domain"
	"trickplay/internal/trickplay"
)

// handleTrickplay serves the generated artifacts:
//
//	GET /trickplay/{itemId}/manifest.json
//	GET /trickplay/{itemId}/locate?position=&screenWidth=
//	GET /trickplay/{itemId}/{width}/tiles.m3u8
//	GET /trickplay/{itemId}/{width}/{n}.jpg
//
// A manifest or playlist request for a tier that does not exist yet schedules
// a background generation and answers 503 with a Retry-After hint; with
// on-demand generation disabled it answers 404. Sheet requests never schedule
// work.
func (s *Server) handleTrickplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.repo == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "repository not configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/trickplay/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item id is required")
		return
	}

	item, err := s.repo.Get(r.Context(), domain.ItemID(parts[0]))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == trickplay.ManifestName:
		s.serveManifest(w, r, item)
	case len(parts) == 2 && parts[1] == "locate":
		s.serveLocate(w, r, item)
	case len(parts) == 3:
		width, err := strconv.Atoi(parts[1])
		if err != nil || width <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "width must be a positive integer")
			return
		}
		if !s.widthConfigured(width) {
			writeError(w, http.StatusNotFound, "not_found", "no such resolution tier")
			return
		}
		s.serveTileArtifact(w, r, item, width, parts[2])
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown trickplay resource")
	}
}

func (s *Server) serveManifest(w http.ResponseWriter, r *http.Request, item domain.LibraryItem) {
	path, ok := s.layout.ExistingManifestPath(item)
	if !ok {
		s.respondNotReady(w, item)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, path)
}

func (s *Server) serveTileArtifact(w http.ResponseWriter, r *http.Request, item domain.LibraryItem, width int, name string) {
	switch {
	case name == trickplay.PlaylistName:
		path, ok := s.layout.ExistingPlaylistPath(item, width)
		if !ok {
			s.respondNotReady(w, item)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		http.ServeFile(w, r, path)

	case strings.HasSuffix(name, trickplay.SheetExt):
		tileID, err := strconv.Atoi(strings.TrimSuffix(name, trickplay.SheetExt))
		if err != nil || tileID < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "sheet number must be a positive integer")
			return
		}
		// Sheets are fetched by players following a playlist they already
		// hold; a missing sheet is a plain not-found, never a reason to
		// schedule work.
		path, ok := s.layout.ExistingTilePath(item, width, tileID)
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", "sheet not found")
			return
		}
		http.ServeFile(w, r, path)

	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown trickplay resource")
	}
}

type locateResponse struct {
	trickplay.TileLocation
	TileURL string `json:"tileUrl"`
}

// serveLocate resolves a playback position and screen width to the sheet and
// crop rectangle a scrubber should show. Debug aid for clients that do the
// same math locally.
func (s *Server) serveLocate(w http.ResponseWriter, r *http.Request, item domain.LibraryItem) {
	q := r.URL.Query()
	position, err := strconv.ParseFloat(q.Get("position"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "position must be a fraction between 0 and 1")
		return
	}
	screenWidth, err := strconv.Atoi(q.Get("screenWidth"))
	if err != nil || screenWidth <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "screenWidth must be a positive integer")
		return
	}

	manifestPath, ok := s.layout.ExistingManifestPath(item)
	if !ok {
		s.respondNotReady(w, item)
		return
	}
	manifest, err := trickplay.ReadManifest(manifestPath)
	if err != nil {
		// A corrupt manifest is treated as absent; the next generation
		// run rewrites it.
		s.respondNotReady(w, item)
		return
	}

	tier, ok := trickplay.SelectTier(manifest, float64(screenWidth))
	if !ok {
		s.respondNotReady(w, item)
		return
	}

	loc := trickplay.Locate(position, item.RuntimeTicks, tier)
	writeJSON(w, http.StatusOK, locateResponse{
		TileLocation: loc,
		TileURL:      fmt.Sprintf("/trickplay/%s/%d/%d%s", item.ID, tier.Width, loc.SheetIndex+1, trickplay.SheetExt),
	})
}

func (s *Server) widthConfigured(width int) bool {
	if len(s.tierWidths) == 0 {
		return true
	}
	for _, w := range s.tierWidths {
		if w == width {
			return true
		}
	}
	return false
}

func (s *Server) scheduleGeneration(item domain.LibraryItem) {
	if !s.onDemand || s.tiles == nil {
		return
	}
	s.tiles.Trigger(item)
}

// respondNotReady schedules a background generation for the item and tells the
// caller to come back once it has produced artifacts. With on-demand
// generation disabled the artifact simply does not exist, so the answer is a
// plain not-found.
func (s *Server) respondNotReady(w http.ResponseWriter, item domain.LibraryItem) {
	if !s.onDemand {
		writeError(w, http.StatusNotFound, "not_found", "trickplay not available for this item")
		return
	}
	s.scheduleGeneration(item)
	writeUseCaseError(w, domain.ErrNotReady)
}

package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"trickplay/internal/domain"
	"trickplay/internal/usecase"
)

type itemResponse struct {
	ID           domain.ItemID             `json:"id"`
	Name         string                    `json:"name"`
	Path         string                    `json:"path"`
	RuntimeTicks int64                     `json:"runtimeTicks"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
	Tiers        map[int]usecase.TierState `json:"tiers,omitempty"`
}

func toItemResponse(state usecase.ItemState) itemResponse {
	item := state.Item
	return itemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Path:         item.Path,
		RuntimeTicks: item.RuntimeTicks,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
		Tiers:        state.Tiers,
	}
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleRegisterItem(w, r)
	case http.MethodGet:
		s.handleListItems(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type registerItemJSON struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

func (s *Server) handleRegisterItem(w http.ResponseWriter, r *http.Request) {
	if s.registerItem == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "register item use case not configured")
		return
	}

	var body registerItemJSON
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	// Probing large files can stall; cap the handler execution time.
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	item, err := s.registerItem.Execute(ctx, usecase.RegisterItemInput{
		Path: strings.TrimSpace(body.Path),
		Name: strings.TrimSpace(body.Name),
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(usecase.ItemState{Item: item}))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if s.listItems == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "list items use case not configured")
		return
	}

	states, err := s.listItems.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	responses := make([]itemResponse, 0, len(states))
	for _, state := range states {
		responses = append(responses, toItemResponse(state))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleItemByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/items/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item id is required")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.handleGetItem(w, r, domain.ItemID(id))
	case action == "" && r.Method == http.MethodDelete:
		s.handleDeleteItem(w, r, domain.ItemID(id))
	case action == "trickplay" && r.Method == http.MethodPost:
		s.handleTriggerGeneration(w, r, domain.ItemID(id))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request, id domain.ItemID) {
	if s.getItem == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "get item use case not configured")
		return
	}

	state, err := s.getItem.Execute(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(state))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, id domain.ItemID) {
	if s.deleteItem == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "delete item use case not configured")
		return
	}

	if err := s.deleteItem.Execute(r.Context(), id); err != nil {
		writeUseCaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTriggerGeneration(w http.ResponseWriter, r *http.Request, id domain.ItemID) {
	if s.tiles == nil || s.repo == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "tile generator not configured")
		return
	}

	item, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	if !s.tiles.Trigger(item) {
		writeError(w, http.StatusConflict, "generation_in_progress", "generation already running for this item")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"trickplay/internal/domain"
	"trickplay/internal/usecase"
)

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrInvalidPath) {
		writeError(w, http.StatusBadRequest, "invalid_request", "path must be absolute")
		return
	}
	if errors.Is(err, usecase.ErrNoVideo) {
		writeError(w, http.StatusUnprocessableEntity, "no_video", "file has no usable video stream")
		return
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		writeError(w, http.StatusConflict, "already_exists", "item already registered")
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}
	if errors.Is(err, domain.ErrNotReady) {
		writeNotReady(w)
		return
	}
	if errors.Is(err, usecase.ErrProbe) {
		writeError(w, http.StatusUnprocessableEntity, "probe_failed", err.Error())
		return
	}
	if errors.Is(err, usecase.ErrRepository) {
		writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
		return
	}

	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// writeNotReady answers for artifacts that are absent but may appear after a
// generation run. Clients retry after the hinted delay.
func writeNotReady(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "30")
	writeError(w, http.StatusServiceUnavailable, "not_ready", "tiles are being generated, retry later")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

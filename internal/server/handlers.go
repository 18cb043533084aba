package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"profilegram/pkg/errors"
	"profilegram/pkg/models"
	"profilegram/pkg/storage"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type scrapeRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScrape triggers a scrape and returns the resulting snapshot. The
// snapshot is returned with 200 even when degraded; only invalid input and
// a missing provider credential map to error responses.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a username field")
		return
	}

	snapshot, err := s.scraper.Run(r.Context(), req.Username)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// handleGetProfile serves the cached snapshot for a username, scraping on
// a cache miss. refresh=1 bypasses the cache and forces a fresh scrape.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))

	refresh := r.URL.Query().Get("refresh")
	force := refresh == "1" || strings.EqualFold(refresh, "true")

	if s.store != nil && !force {
		snapshot, err := s.store.Get(r.Context(), username)
		if err == nil {
			writeJSON(w, http.StatusOK, snapshot)
			return
		}
		if !stderrors.Is(err, storage.ErrNotFound) {
			// Read failures fall through to a fresh scrape
			s.logger.WarnWithFields("snapshot read failed", map[string]interface{}{
				"request_id": RequestID(r.Context()),
				"username":   username,
				"error":      err.Error(),
			})
		}
	}

	snapshot, err := s.scraper.Run(r.Context(), username)
	if err != nil {
		if errorType(err) == errors.ErrorTypeInvalidInput {
			s.writeRunError(w, r, err)
			return
		}
		// Nothing cached and no way to scrape: serve the synthetic
		// not-found snapshot so the body shape stays stable.
		writeJSON(w, http.StatusNotFound, models.NotFoundSnapshot(username))
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "scrape failed"

	switch errorType(err) {
	case errors.ErrorTypeInvalidInput:
		status = http.StatusBadRequest
		message = "invalid request"
	case errors.ErrorTypeNotConfigured:
		status = http.StatusServiceUnavailable
		message = "service is not configured"
	}

	s.logger.WarnWithFields("scrape request rejected", map[string]interface{}{
		"request_id": RequestID(r.Context()),
		"status":     status,
		"error":      err.Error(),
	})

	writeJSON(w, status, errorResponse{Message: message, Error: err.Error()})
}

func errorType(err error) errors.ErrorType {
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return errors.ErrorTypeUnknown
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message, Error: http.StatusText(status)})
}

package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wanderlist/wanderlist/internal/notify"
	gosync "github.com/wanderlist/wanderlist/internal/sync"
)

// handleSyncCreate handles POST /api/v1/sync/codes.
// The payload is whatever the local preference store currently holds.
func (s *Server) handleSyncCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	payload, err := gosync.BuildLocalPayload(s.prefs, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, cancel := context30(r)
	defer cancel()
	code, err := s.registry.CreateSyncLink(ctx, req.Email, payload)
	if err != nil {
		writeError(w, syncErrorStatus(err), err.Error())
		return
	}
	notify.NotifySyncCreated(payload.DeviceName,
		len(payload.SavedDestinations), len(payload.RejectedDestinations))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"code":       code,
		"expires_in": gosync.CodeTTL.String(),
	})
}

// handleSyncApply handles POST /api/v1/sync/apply.
// A successful apply overwrites the local preference store.
func (s *Server) handleSyncApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Code  string `json:"code"`
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ctx, cancel := context30(r)
	defer cancel()
	payload, err := s.registry.ApplySyncCode(ctx, req.Code, req.Email)
	if err != nil {
		writeError(w, syncErrorStatus(err), err.Error())
		return
	}
	if err := gosync.ApplyLocalPayload(s.prefs, payload); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	notify.NotifySyncApplied(payload.DeviceName,
		len(payload.SavedDestinations), len(payload.RejectedDestinations))
	writeJSON(w, http.StatusOK, payload)
}

// handleSyncStats handles GET /api/v1/sync/stats.
func (s *Server) handleSyncStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.registry.Stats())
}

// handleSyncClear handles DELETE /api/v1/sync.
func (s *Server) handleSyncClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx, cancel := context30(r)
	defer cancel()
	if err := s.registry.ClearAll(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	notify.NotifySyncCleared()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// syncErrorStatus maps registry failures onto HTTP status codes.
// Mismatch and decryption failures share a status so the response does
// not reveal which check failed.
func syncErrorStatus(err error) int {
	switch {
	case errors.Is(err, gosync.ErrInvalidEmail), errors.Is(err, gosync.ErrEmptyCode):
		return http.StatusBadRequest
	case errors.Is(err, gosync.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, gosync.ErrCodeExpired):
		return http.StatusGone
	case errors.Is(err, gosync.ErrEmailMismatch), errors.Is(err, gosync.ErrDecryptFailed), errors.Is(err, gosync.ErrCorruptPayload):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func context30(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 30*time.Second)
}

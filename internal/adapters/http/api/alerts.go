package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/portfolio/internal/app"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/logger"
)

type alertAck struct {
	ID        string         `json:"id"`
	Severity  model.Severity `json:"severity,omitempty"`
	Duplicate bool           `json:"duplicate"`
}

type vitalsRequest struct {
	model.PerformanceSnapshot
	MemoryLimit float64 `json:"memoryLimit"`
}

type vitalsAck struct {
	Alerts []model.Alert `json:"alerts"`
}

// readBody returns the request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// handleThemeAlert handles POST /api/theme-alerts.
func (s *Server) handleThemeAlert(w http.ResponseWriter, r *http.Request) {
	const op = "api.theme_alert"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if err := check(s.schemas.alert, body); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	var a model.Alert
	if err := json.Unmarshal(body, &a); err != nil {
		writeFailure(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	stored, err := s.deps.IngestAlert(r.Context(), a)
	switch {
	case errors.Is(err, app.ErrDuplicate):
		writeSuccess(w, http.StatusOK, alertAck{ID: a.ID, Duplicate: true})
	case err != nil:
		s.logger.Error(r.Context(), "alert ingest failed", logger.Error(Wrap(op, err)))
		writeFailure(w, http.StatusInternalServerError, MsgInternal)
	default:
		writeSuccess(w, http.StatusAccepted, alertAck{ID: stored.ID, Severity: stored.Severity})
	}
}

// handleVitals handles POST /api/vitals.
func (s *Server) handleVitals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if err := check(s.schemas.vitals, body); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	var req vitalsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	raised := s.deps.RecordVitals(r.Context(), req.PerformanceSnapshot, req.MemoryLimit)
	if raised == nil {
		raised = []model.Alert{}
	}
	writeSuccess(w, http.StatusOK, vitalsAck{Alerts: raised})
}

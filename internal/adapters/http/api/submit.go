package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/portfolio/internal/app"
	"github.com/okian/portfolio/internal/domain/validation"
	"github.com/okian/portfolio/pkg/logger"
)

// handleSubmit handles POST /api/submit.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req app.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Debug(r.Context(), "undecodable submission", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeFailure(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	_, err := s.deps.Submit(r.Context(), req)
	var verr *validation.Error
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, envelope{Success: true})
	case errors.As(err, &verr):
		writeFailure(w, http.StatusBadRequest, verr.Message)
	default:
		s.logger.Error(r.Context(), "submission failed", logger.Error(Wrap(op, err)))
		writeFailure(w, http.StatusInternalServerError, MsgStoreFailure)
	}
}

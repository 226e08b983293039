package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/portfolio/internal/ui/monitor"
	"github.com/okian/portfolio/pkg/logger"
)

// handleThemes handles GET /api/themes.
func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeSuccess(w, http.StatusOK, s.deps.Themes())
}

// handleDiagnostics handles GET and POST /api/diagnostics. GET assumes a
// modern browser with the caller's user agent; POST takes the browser
// environment in the body.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	const op = "api.diagnostics"
	env := monitor.ModernEnvironment(r.UserAgent())
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&env)
		if err != nil && !errors.Is(err, io.EOF) {
			writeFailure(w, http.StatusBadRequest, MsgInvalidBody)
			return
		}
	default:
		http.NotFound(w, r)
		return
	}

	results, err := s.deps.Diagnostics(r.Context(), env)
	if err != nil {
		s.logger.Error(r.Context(), "diagnostics failed", logger.Error(Wrap(op, err)))
		writeFailure(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	writeSuccess(w, http.StatusOK, results)
}

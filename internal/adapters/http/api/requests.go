package api

import (
	"net/http"

	"github.com/okian/portfolio/pkg/logger"
)

// handleListRequests handles GET /api/requests.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_requests"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := s.deps.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "failed to list submissions", logger.Error(Wrap(op, err)))
		writeFailure(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	writeSuccess(w, http.StatusOK, records)
}

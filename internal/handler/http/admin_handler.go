package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"refpay/internal/domain"
)

type resolveRequest struct {
	Action  string `json:"action" validate:"required,oneof=pay reject"`
	AdminID int64  `json:"admin_id" validate:"required,gt=0"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = parsed
	}

	out, err := s.review.ListPending(r.Context(), page)
	if err != nil {
		s.logger.Printf("pending listing failed (page %d): %v", page, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req resolveRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.review.Resolve(r.Context(), requestID, domain.ReviewAction(req.Action), req.AdminID, req.Comment)
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, domain.ErrRequestNotPending):
		writeError(w, http.StatusConflict, "request already processed")
	case errors.Is(err, domain.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "unknown action")
	case err != nil:
		s.logger.Printf("resolve failed for request %s: %v", requestID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"refpay/internal/domain"
)

type startRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type amountRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Amount string `json:"amount" validate:"required"`
}

type contactRequest struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Contact string `json:"contact" validate:"required"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.withdraw.Start(r.Context(), req.UserID)
	if err != nil {
		s.logger.Printf("withdraw start failed for user %d: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.withdraw.SubmitAmount(r.Context(), req.UserID, req.Amount)
	if err != nil {
		s.logger.Printf("withdraw amount step failed for user %d: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.withdraw.SubmitContact(r.Context(), req.UserID, req.Contact)
	if err != nil {
		s.logger.Printf("withdraw submit failed for user %d: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.withdraw.Cancel(r.Context(), req.UserID)
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

type balanceResponse struct {
	UserID  int64           `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	balance, err := s.balances.GetBalance(r.Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Printf("balance lookup failed for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: balance})
}

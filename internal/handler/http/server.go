package http

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"refpay/internal/port"
)

// Server is the thin HTTP boundary over the withdraw workflow and the admin
// review queue. It maps payloads to service calls and outcomes back to JSON;
// no presentation logic lives here.
type Server struct {
	withdraw   port.WithdrawService
	review     port.ReviewService
	balances   port.BalanceRepository
	validate   *validator.Validate
	adminToken string
	logger     *log.Logger
}

func NewServer(
	withdraw port.WithdrawService,
	review port.ReviewService,
	balances port.BalanceRepository,
	adminToken string,
	logger *log.Logger,
) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		withdraw:   withdraw,
		review:     review,
		balances:   balances,
		validate:   validator.New(),
		adminToken: adminToken,
		logger:     logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Post("/withdraw/start", s.handleStart)
		r.Post("/withdraw/amount", s.handleAmount)
		r.Post("/withdraw/contact", s.handleContact)
		r.Post("/withdraw/cancel", s.handleCancel)

		r.Get("/users/{userID}/balance", s.handleBalance)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminAuth)
			r.Get("/withdrawals", s.handleListPending)
			r.Post("/withdrawals/{requestID}/resolve", s.handleResolve)
		})
	})

	return r
}

func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get("Authorization"))
		if !secureCompare(token, s.adminToken) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decode unmarshals the body into v and runs struct validation.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return s.validate.Struct(v)
}

func extractBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Package httpapi is the thin HTTP surface: request/response mapping
// only, all decisions live in the usecases.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/internal/usecase"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/metrics"
)

// Server holds the handlers' collaborators.
type Server struct {
	matcher           *usecase.BookingMatcher
	orchestrator      *usecase.ChatOrchestrator
	sender            repository.EmailSender
	hostEmails        []string
	defaultPropertyID string
	logger            logger.Logger
	metrics           *metrics.Metrics
}

// NewServer creates the HTTP surface.
func NewServer(
	matcher *usecase.BookingMatcher,
	orchestrator *usecase.ChatOrchestrator,
	sender repository.EmailSender,
	hostEmails []string,
	defaultPropertyID string,
	log logger.Logger,
	m *metrics.Metrics,
) *Server {
	return &Server{
		matcher:           matcher,
		orchestrator:      orchestrator,
		sender:            sender,
		hostEmails:        hostEmails,
		defaultPropertyID: defaultPropertyID,
		logger:            log,
		metrics:           m,
	}
}

// Register mounts the API routes on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/match-guest", s.handleMatchGuest)
	mux.HandleFunc("/api/guest/register", s.handleGuestRegister)
	mux.HandleFunc("/api/host/authorize", s.handleHostAuthorize)
}

// CORS allows the embedded widget to call the API from any origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/saathigo/internal/engine"
	"github.com/example/saathigo/internal/gateway"
)

// Server is the HTTP edge: the websocket endpoint that riders attach to,
// plus the read-only diagnostic and operational routes.
type Server struct {
	Gateway *gateway.Gateway
	Engine  *engine.Engine

	logger *slog.Logger
	mux    *mux.Router
}

func NewServer(eng *engine.Engine, gw *gateway.Gateway, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Gateway: gw, Engine: eng, logger: logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/ws", s.Gateway.HandleWS)
	s.mux.HandleFunc("/api/active-requests", s.handleActiveRequests).Methods("GET")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// handleActiveRequests returns the active pool with connection identifiers
// redacted. Monitoring only; there is no mutation path here.
func (s *Server) handleActiveRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Engine.ActiveRequests()); err != nil {
		s.logger.Warn("encoding active requests", "error", err)
	}
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }

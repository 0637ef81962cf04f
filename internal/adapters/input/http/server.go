package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/smarthome"
	"hap-gsh-bridge/internal/metrics"
	"hap-gsh-bridge/internal/ports"
)

// Server is the local status surface: health, device list, per-device state
// and control, and Prometheus metrics.
type Server struct {
	bridge  ports.BridgePort
	metrics *metrics.Metrics
	token   string
	logger  *zap.Logger
}

type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on the /api routes.
// Without a token the device routes are read-only.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func NewServer(bridge ports.BridgePort, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		bridge:  bridge,
		metrics: m,
		logger:  zap.L().Named("http"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/devices", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.handleDevices)
		r.Get("/{id}/state", s.handleState)
		r.Post("/{id}/execute", s.handleExecute)
	})
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.bridge.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.bridge.Sync(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	states, err := s.bridge.Query(r.Context(), []smarthome.DeviceRef{{ID: id}})
	if err != nil {
		s.fail(w, err)
		return
	}
	state := states[id]
	if len(state) == 0 {
		http.Error(w, "device not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleExecute runs a single execution against one device. The body is an
// execution object: {"command": ..., "params": {...}, "challenge": {...}}.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var exec smarthome.Execution
	if err := json.NewDecoder(r.Body).Decode(&exec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if exec.Command == "" {
		http.Error(w, "command is required", http.StatusBadRequest)
		return
	}

	results, err := s.bridge.Execute(r.Context(), []smarthome.Command{{
		Devices:   []smarthome.DeviceRef{{ID: id}},
		Execution: []smarthome.Execution{exec},
	}})
	if err != nil {
		s.fail(w, err)
		return
	}
	if len(results) == 0 {
		http.Error(w, "no result", http.StatusInternalServerError)
		return
	}

	out := smarthome.Encode(results[0])
	status := http.StatusOK
	switch results[0].(type) {
	case smarthome.Offline:
		status = http.StatusNotFound
	case smarthome.ChallengeNeeded:
		status = http.StatusForbidden
	case smarthome.Error:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, out)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			if r.Method != http.MethodGet {
				writeJSONError(w, http.StatusForbidden, "device control needs a status token")
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		tok := extractToken(r)
		if tok == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(tok), []byte(s.token)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusServiceUnavailable)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveHTTPRequest(route, r.Method, strconv.Itoa(rw.status))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package runtime

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c-fraser/connekted/internal/runtime/codec"
	"github.com/c-fraser/connekted/internal/runtime/logging"
)

const adminStopTimeout = 5 * time.Second

// adminServer is the application's control plane: liveness, readiness, a
// metrics scrape endpoint, and token-protected data and shutdown endpoints.
type adminServer struct {
	app    *Application
	logger logging.ServiceLogger

	mu     sync.Mutex
	server *http.Server
	addr   string
}

func newAdminServer(app *Application, logger logging.ServiceLogger) *adminServer {
	return &adminServer{app: app, logger: logger}
}

func (s *adminServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	if s.app.conf.MetricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(s.app.registry, promhttp.HandlerOpts{}))
	}
	// The data and shutdown endpoints only exist when a token is configured.
	if s.app.conf.AdminToken != "" {
		mux.HandleFunc("/data", s.handleData)
		mux.HandleFunc("/shutdown", s.handleShutdown)
	}
	return mux
}

// serve runs the control-plane server until it is stopped via stop() or the
// context is cancelled.
func (s *adminServer) serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.app.conf.EffectiveAdminPort()))
	if err != nil {
		return fmt.Errorf("listen for control plane: %w", err)
	}
	server := &http.Server{Handler: s.routes()}

	s.mu.Lock()
	s.server = server
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info("Control plane listening", logging.LogFields{"address": listener.Addr().String()})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.stop()
		<-errCh
		return nil
	}
}

// address returns the bound listen address, empty before serve.
func (s *adminServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// stop gracefully stops the control-plane server. Safe to call multiple
// times and before serve.
func (s *adminServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.mu.Unlock()
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminStopTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("Control plane shutdown failed", err, nil)
	}
}

func (s *adminServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *adminServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.app.State() != StateRunning {
		http.Error(w, s.app.State().String(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *adminServer) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := codec.Marshal(s.app.Data())
	if err != nil {
		s.logger.Error("Failed to marshal application data", err, nil)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *adminServer) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.logger.Info("Shutdown requested via control plane", nil)
	// Run asynchronously so this response can be written before the server
	// itself is stopped as part of the shutdown sequence.
	go s.app.Shutdown()

	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("shutting down"))
}

func (s *adminServer) authorized(r *http.Request) bool {
	token := s.app.conf.AdminToken
	if token == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	bearer, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(bearer), []byte(token)) == 1
}

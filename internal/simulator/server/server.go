// Package server is the operator HTTP surface of the simulator: probes,
// Prometheus metrics, the live feed and vehicle snapshots.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/vehicle"
	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/options"
)

// Fleet is what the server reports on.
type Fleet interface {
	// Ready reports whether every vehicle session is up.
	Ready() bool
	Snapshots() []vehicle.Snapshot
	Snapshot(id int) (vehicle.Snapshot, bool)
}

type Server struct {
	server  *http.Server
	options *options.HttpOptions
	logger  log.Logger
}

// New builds the server. feed may be nil, in which case /feed is not routed.
func New(opts *options.HttpOptions, fleet Fleet, feed http.Handler, logger log.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(fleet, feed),
			ReadHeaderTimeout: opts.Timeout,
		},
		options: opts,
		logger:  logger,
	}
}

// NewRouter returns the routes of the operator surface.
func NewRouter(fleet Fleet, feed http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !fleet.Ready() {
			http.Error(w, "vehicles not started", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	if feed != nil {
		r.Handle("/feed", feed).Methods(http.MethodGet)
	}

	r.HandleFunc("/vehicles", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, fleet.Snapshots())
	}).Methods(http.MethodGet)

	r.HandleFunc("/vehicles/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.Atoi(mux.Vars(req)["id"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, ok := fleet.Snapshot(id)
		if !ok {
			http.Error(w, "vehicle not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := s.options.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("Stopping HTTP Server")
		return s.server.Shutdown(shutdownCtx)
	}
}

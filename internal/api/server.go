// v2
// server.go

// Package api exposes the simulator's status surface: health, current
// state, latest readings, Prometheus metrics and a websocket feed.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/GiuBlockchainDEV/hydrosim/internal/metrics"
	"github.com/GiuBlockchainDEV/hydrosim/internal/runner"
	"github.com/GiuBlockchainDEV/hydrosim/internal/sink"
)

// StatusSource is the view of the runner the API serves.
type StatusSource interface {
	Status() runner.Status
	Latest() (sink.Envelope, bool)
}

type Server struct {
	HTTP *http.Server
	Log  *slog.Logger
}

func NewServer(addr string, log *slog.Logger, src StatusSource, m *metrics.Metrics, hub *Hub) *Server {
	h := &handlersImpl{log: log, src: src}

	r := mux.NewRouter()
	r.Handle("/healthz", m.WrapHandler("/healthz", http.HandlerFunc(h.health))).Methods("GET")
	r.Handle("/status", m.WrapHandler("/status", http.HandlerFunc(h.status))).Methods("GET")
	r.Handle("/readings/latest", m.WrapHandler("/readings/latest", http.HandlerFunc(h.latest))).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")
	if hub != nil {
		r.HandleFunc("/ws", hub.HandleWS)
	}

	chain := handlers.RecoveryHandler()(r)
	chain = handlers.LoggingHandler(os.Stdout, chain)
	chain = cors.Default().Handler(chain)

	hs := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{HTTP: hs, Log: log}
}

// Start serves in the background; ListenAndServe errors other than a
// clean shutdown are logged, not returned.
func (s *Server) Start() {
	s.Log.Info("http server starting", "addr", s.HTTP.Addr)
	go func() {
		if err := s.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Error("http server failed", "err", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.Log.Info("http server stopping")
	return s.HTTP.Shutdown(ctx)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agentmesh/core/config"
	"github.com/agentmesh/core/envelope"
)

// httpServer is the process's only externally reachable surface: health
// checks for orchestrators and, when enabled, a Prometheus scrape endpoint.
// It deliberately does not expose anything for submitting envelopes — that
// is left to whatever embeds this runtime as a library.
type httpServer struct {
	srv    *http.Server
	logger *zap.Logger
}

func newHTTPServer(cfg *config.Config, graph *demoGraph, logger *zap.Logger) *httpServer {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz/agents", func(w http.ResponseWriter, r *http.Request) {
		handleAgentHealth(w, graph)
	})

	if cfg.Telemetry.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	return &httpServer{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		logger: logger.With(zap.String("component", "http_server")),
	}
}

type agentHealth struct {
	AgentID string `json:"agent_id"`
	Role    string `json:"role"`
	State   string `json:"state"`
}

// handleAgentHealth reports whether the supervisor and every one of its
// workers is still registered with the Manager.
func handleAgentHealth(w http.ResponseWriter, graph *demoGraph) {
	w.Header().Set("Content-Type", "application/json")

	report := make([]agentHealth, 0, graph.workerCount+1)
	report = append(report, agentStatus(graph, graph.supervisorID, "supervisor"))
	for _, childID := range graph.manager.Graph().GetChildren(graph.supervisorID) {
		report = append(report, agentStatus(graph, childID, "worker"))
	}

	_ = json.NewEncoder(w).Encode(report)
}

func agentStatus(graph *demoGraph, id envelope.AgentID, role string) agentHealth {
	state := "registered"
	if _, ok := graph.manager.Lookup(id); !ok {
		state = "not_registered"
	}
	return agentHealth{AgentID: id.String(), Role: role, State: state}
}

func (s *httpServer) start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server exited", zap.Error(err))
		}
	}()
	s.logger.Info("http server started", zap.String("addr", s.srv.Addr))
}

func (s *httpServer) shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

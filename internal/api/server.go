// Package api exposes the report runs over HTTP.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/pkg/config"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// Runner runs batch passes and single farms. *orchestrator.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, hint time.Time, opts model.RunOptions) (*model.JobResult, error)
	RunSingle(ctx context.Context, farmNo int, dayGb model.DayGb, asOf time.Time) (*model.FarmResult, error)
}

// Server is the HTTP trigger.
type Server struct {
	runner  Runner
	metrics http.Handler
	loc     *time.Location
	cfg     config.ServerConfig
	now     func() time.Time
	srv     *http.Server
}

// NewServer creates a Server. metrics may be nil, in which case /metrics is not served.
func NewServer(cfg config.ServerConfig, runner Runner, metrics http.Handler, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{runner: runner, metrics: metrics, loc: loc, cfg: cfg, now: time.Now}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(s.cfg.AllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api/etl", func(etl chi.Router) {
		etl.Post("/run-farm", s.handleRunFarm)
		etl.Post("/run-batch", s.handleRunBatch)
	})
	return r
}

// Start listens in the background until Shutdown.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server on %s stopped: %v", s.cfg.Addr, err)
		}
	}()
	logger.Infof("HTTP trigger listening on %s.", s.cfg.Addr)
	return nil
}

// Shutdown stops accepting requests and waits for running handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func allowedOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Package http exposes the discovery platform over a REST interface: start a
// discovery run, poll its progress, stop it, query stored records, purge by
// source, health and metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/APISource-Intelligence/internal/config"
	"github.com/turtacn/APISource-Intelligence/internal/discovery"
	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	appprom "github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/APISource-Intelligence/internal/session"
)

// Server hosts the REST interface.
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server

	manufacturers *discovery.ManufacturerService
	buyers        *discovery.BuyerService
	analyzer      *discovery.RelevanceAnalyzer
	sessions      session.Store

	manufacturerRecords sourcing.ManufacturerRepository
	buyerRecords        sourcing.BuyerRepository

	// trackers holds the per-session progress queues; they are process
	// local by design since the goroutine running the session lives here.
	trackers       sync.Map
	progressBuffer int

	healthFn       func(ctx context.Context) error
	metrics        *appprom.AppMetrics
	metricsHandler http.Handler
	metricsPath    string
	logger         logging.Logger
}

// Options wires the server's collaborators.  Manufacturers, Buyers, and
// Sessions are required; the rest are optional.
type Options struct {
	Config              config.ServerConfig
	Manufacturers       *discovery.ManufacturerService
	Buyers              *discovery.BuyerService
	Analyzer            *discovery.RelevanceAnalyzer
	Sessions            session.Store
	ManufacturerRecords sourcing.ManufacturerRepository
	BuyerRecords        sourcing.BuyerRepository
	ProgressBuffer      int
	HealthFn            func(ctx context.Context) error
	Metrics             *appprom.AppMetrics
	MetricsHandler      http.Handler
	MetricsPath         string
	Logger              logging.Logger
}

// NewServer builds the server and its route table.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.ProgressBuffer <= 0 {
		opts.ProgressBuffer = 100
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:                 opts.Config,
		engine:              engine,
		manufacturers:       opts.Manufacturers,
		buyers:              opts.Buyers,
		analyzer:            opts.Analyzer,
		sessions:            opts.Sessions,
		manufacturerRecords: opts.ManufacturerRecords,
		buyerRecords:        opts.BuyerRecords,
		progressBuffer:      opts.ProgressBuffer,
		healthFn:            opts.HealthFn,
		metrics:             opts.Metrics,
		metricsHandler:      opts.MetricsHandler,
		metricsPath:         opts.MetricsPath,
		logger:              opts.Logger.Named("http"),
	}
	engine.Use(s.requestLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		s.engine.GET(s.metricsPath, gin.WrapH(s.metricsHandler))
	}

	api := s.engine.Group("/api/v1")
	{
		api.POST("/discovery/manufacturers", s.handleStartManufacturerDiscovery)
		api.POST("/discovery/buyers", s.handleStartBuyerDiscovery)
		api.POST("/analysis/synthesis", s.handleStartSynthesisAnalysis)

		api.GET("/sessions/:id", s.handleGetSession)
		api.GET("/sessions/:id/progress", s.handleSessionProgress)
		api.POST("/sessions/:id/stop", s.handleStopSession)

		api.GET("/records/manufacturers", s.handleQueryManufacturers)
		api.GET("/records/buyers", s.handleQueryBuyers)
		api.DELETE("/records/manufacturers/sources/:name", s.handlePurgeBySource)
	}
}

// Handler returns the route tree, used directly by tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then drains with the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

//Personal.AI order the ending

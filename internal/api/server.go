// Package api serves the paper-trading engine over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrader/internal/metrics"
	"github.com/rustyeddy/papertrader/sim"
)

const (
	BasePath    = "/api/v1/paper-trading"
	ServiceName = "paper-trading"

	DefaultHistoryLimit   = 10
	DefaultStreamInterval = time.Second
)

type Options struct {
	Addr           string
	HistoryLimit   int
	StreamInterval time.Duration
}

type Server struct {
	engine  *sim.Engine
	metrics *metrics.Metrics
	logger  *zap.Logger
	opts    Options

	router *gin.Engine
	server *http.Server

	// done is closed on Shutdown to stop hijacked stream connections,
	// which http.Server.Shutdown does not track.
	done     chan struct{}
	doneOnce sync.Once
}

// NewServer wires the routes. m may be nil to run without /metrics.
func NewServer(engine *sim.Engine, m *metrics.Metrics, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = DefaultStreamInterval
	}

	s := &Server{
		engine:  engine,
		metrics: m,
		logger:  logger,
		opts:    opts,
		router:  gin.New(),
		done:    make(chan struct{}),
	}
	s.router.Use(gin.Recovery(), requestLogger(logger))
	if m != nil {
		s.router.Use(requestMetrics(m))
	}
	s.routes()

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group(BasePath)
	{
		api.POST("/accounts", s.handleCreateAccount)
		api.GET("/accounts/:id", s.handleGetAccount)
		api.POST("/accounts/:id/close", s.handleCloseAccount)
		api.GET("/accounts/:id/history", s.handleHistory)

		api.POST("/orders", s.handlePlaceOrder)
		api.POST("/positions/:id/close", s.handleClosePosition)

		api.GET("/market/prices", s.handlePrices)
		api.GET("/market/symbols", s.handleSymbols)
		api.GET("/market/asset-types", s.handleAssetTypes)
		api.GET("/market/stream", s.handleStream)
	}
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.doneOnce.Do(func() { close(s.done) })
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": time.Now().UTC(),
	})
}

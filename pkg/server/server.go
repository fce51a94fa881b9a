// Package server exposes the generation pipeline over HTTP: run a novel,
// analyze an existing manuscript, and diff two drafts.
package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fabula/pkg/chart"
	"fabula/pkg/engine"
	"fabula/pkg/flight"
	"fabula/pkg/inference"
	"fabula/pkg/metrics"
	"fabula/pkg/queue"
	"fabula/pkg/utils"
)

type Server struct {
	Echo       *echo.Echo
	Inferencer inference.Inferencer
	Queue      *queue.Queue
	Runs       *utils.SyncMap[map[string]*engine.Result, string, *engine.Result]

	charts flight.Cache[string, []byte]
}

func NewServer(inf inference.Inferencer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:       e,
		Inferencer: inf,
		Runs:       utils.NewSyncMap[map[string]*engine.Result](),
	}
	s.Queue = queue.New(func(ctx context.Context, concept engine.Concept) (*engine.Result, error) {
		return engine.New(s.Inferencer, s.newRand()).Run(ctx, concept)
	})
	s.charts = flight.NewCache(func(runID string) ([]byte, error) {
		r, ok := s.Runs.Load(runID)
		if !ok {
			return nil, errors.New("unknown run id")
		}
		return chart.Render(r.Metrics.ValenceHistory, metrics.SignificantSwing)
	})
	s.charts.Expiry(30 * time.Minute)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/write", s.handlePostWrite)     // concept -> full generation run, SSE progress
	api.POST("/analyze", s.handlePostAnalyze) // manuscript -> narrative metrics, SSE per chapter
	api.POST("/diff", s.handlePostDiff)       // two drafts -> revision diff
	api.GET("/runs", s.handleGetRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/chart", s.handleGetRunChart)
	api.DELETE("/runs/:id", s.handleDeleteRun)
}

func (s *Server) newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (s *Server) Start(addr string) error {
	s.Queue.Start()
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server", "runs", len(s.Runs.Map()))
	s.Queue.Stop()
	return s.Echo.Shutdown(ctx)
}

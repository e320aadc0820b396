// Package server exposes the assistant and the job browse API over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/assistant"
	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
	"github.com/humboldtjobs/humboldt-jobs/internal/ratelimit"
)

const DefaultPort = 8000

type chatAnswerer interface {
	Answer(ctx context.Context, req *assistant.Request) (*assistant.Result, error)
}

type jobBrowser interface {
	Snapshot(ctx context.Context) (*jobstore.Jobs, error)
	Get(ctx context.Context, id int64) (*jobstore.Job, error)
	Employers(ctx context.Context, category string, minJobs int) ([]jobstore.EmployerCount, error)
	Categories(ctx context.Context) ([]jobstore.CategoryCount, error)
	GetStats(ctx context.Context) (*jobstore.Stats, error)
}

// Server wires the chat pipeline and the browse API into one gin router.
type Server struct {
	assistant chatAnswerer
	store     jobBrowser
	limiter   *ratelimit.Limiter
	logger    *zap.Logger
	port      int
}

func New(answerer chatAnswerer, store jobBrowser, limiter *ratelimit.Limiter, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultDailyLimit)
	}
	if port <= 0 {
		port = DefaultPort
	}

	return &Server{
		assistant: answerer,
		store:     store,
		limiter:   limiter,
		logger:    logger,
		port:      port,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.OPTIONS("/chat", func(c *gin.Context) { c.Status(http.StatusOK) })

		api.GET("/jobs", s.handleListJobs)
		api.GET("/jobs/:id", s.handleGetJob)
		api.GET("/employers", s.handleEmployers)
		api.GET("/categories", s.handleCategories)
		api.GET("/stats", s.handleStats)
	}

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server starting", zap.Int("port", s.port))
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

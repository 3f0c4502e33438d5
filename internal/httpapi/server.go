// Package httpapi exposes the generation service over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scrumsmith/scrumsmith/internal/config"
	"github.com/scrumsmith/scrumsmith/internal/document"
	"github.com/scrumsmith/scrumsmith/internal/stats"
)

// Generator runs one transcript-to-document attempt.
type Generator interface {
	Generate(ctx context.Context, clientKey, transcript, modelChoice string) (*document.AgileDocument, []string, error)
}

// StatsSource exposes session counters.
type StatsSource interface {
	Snapshot() stats.Snapshot
}

// Server carries the HTTP surface and its collaborators.
type Server struct {
	generator            Generator
	stats                StatsSource
	provider             string
	models               []string
	credentialConfigured bool
	credentialName       string
	router               *gin.Engine
}

// New assembles the middleware chain, CORS policy, and API routes.
func New(cfg *config.Config, generator Generator, statsSource StatsSource) *Server {
	s := &Server{
		generator:            generator,
		stats:                statsSource,
		provider:             cfg.Provider,
		models:               slices.Clone(cfg.Models),
		credentialConfigured: cfg.CredentialConfigured(),
		credentialName:       cfg.CredentialName(),
	}

	router := gin.New()
	router.Use(recovery(), requestID(), accessLog())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	api := router.Group("/api")
	{
		api.POST("/generate", s.handleGenerate)
		api.GET("/stats", s.handleStats)
	}

	s.router = router
	return s
}

// Handler returns the root http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/scrumsmith/scrumsmith/internal/gateway"
	"github.com/scrumsmith/scrumsmith/internal/generate"
	"github.com/scrumsmith/scrumsmith/internal/prompt"
)

type generateRequest struct {
	Transcript  string `json:"transcript"`
	ModelChoice string `json:"model_choice"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().
			Str("request_id", c.GetString(requestIDKey)).
			Err(err).
			Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	doc, _, err := s.generator.Generate(c.Request.Context(), c.ClientIP(), req.Transcript, req.ModelChoice)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// writeError maps pipeline failures onto the wire contract: every failure
// body is {"detail": ...} and details never carry provider payloads.
func (s *Server) writeError(c *gin.Context, err error) {
	requestID := c.GetString(requestIDKey)

	var rle *generate.RateLimitError
	switch {
	case errors.As(err, &rle):
		retryAfter := int64((time.Until(rle.ResetAt) + time.Second - 1) / time.Second)
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		c.JSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded. Please try again later."})

	case errors.Is(err, prompt.ErrEmptyTranscript):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Transcript cannot be empty"})

	case errors.Is(err, prompt.ErrUnsupportedModel):
		detail := fmt.Sprintf("Unsupported model_choice. Valid options: %s", strings.Join(s.models, ", "))
		c.JSON(http.StatusBadRequest, gin.H{"detail": detail})

	case errors.Is(err, gateway.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": s.credentialName + " not configured"})

	case errors.Is(err, gateway.ErrTransient):
		log.Error().Str("request_id", requestID).Err(err).Msg("provider unavailable after retry")
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "The model provider is temporarily unavailable. Please try again."})

	case errors.Is(err, gateway.ErrRefusal):
		log.Error().Str("request_id", requestID).Err(err).Msg("provider refused the request")
		c.JSON(http.StatusBadGateway, gin.H{"detail": "The model could not produce a document for this transcript."})

	case errors.Is(err, context.Canceled):
		log.Debug().Str("request_id", requestID).Msg("client disconnected")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Request canceled"})

	default:
		log.Error().Str("request_id", requestID).Err(err).Msg("generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate documentation. Please try again."})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "healthy",
		"provider":              s.provider,
		"credential_configured": s.credentialConfigured,
		"available_models":      s.models,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ScrumSmith API",
		"endpoints": gin.H{
			"/health":       "Health check",
			"/api/generate": "Generate documentation from transcript",
			"/api/stats":    "Session statistics",
		},
	})
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/scrumsmith/scrumsmith/internal/prompt"
)

type geminiGateway struct {
	client  *genai.Client
	timeout time.Duration
}

func newGeminiGateway(ctx context.Context, cfg Config) (*geminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiGateway{client: client, timeout: cfg.Timeout}, nil
}

func (g *geminiGateway) Name() string { return ProviderGemini }

func (g *geminiGateway) Invoke(ctx context.Context, payload prompt.Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, payload.Model, genai.Text(payload.Text), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  maxOutputTokens,
	})
	if err != nil {
		return "", classifyGemini(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", refusal("gemini returned no output text")
	}

	log.Debug().
		Str("model", payload.Model).
		Dur("duration", time.Since(started)).
		Int("chars", len(text)).
		Msg("gemini generate completed")

	return text, nil
}

func classifyGemini(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transient("gemini generate timed out: %v", err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.Code) {
			return transient("gemini api %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message)
		}
		return refusal("gemini api %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message)
	}

	// No API response at all; treat network-level failures as retryable.
	return transient("gemini generate: %v", err)
}

// Package gateway invokes the configured model provider and folds every
// provider-specific failure into a three-outcome contract: success,
// transient, or refusal.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scrumsmith/scrumsmith/internal/prompt"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// maxOutputTokens bounds the model response size.
const maxOutputTokens = 8192

var (
	// ErrTransient marks failures worth one retry: timeouts, network
	// errors, quota pressure, provider 5xx responses.
	ErrTransient = errors.New("transient model provider failure")

	// ErrRefusal marks non-retryable outcomes: blocked or empty responses
	// and provider-side request rejections.
	ErrRefusal = errors.New("model refused to produce a response")

	// ErrNotConfigured marks invocations rejected because the active
	// provider has no credential.
	ErrNotConfigured = errors.New("model provider credential is not configured")
)

// Gateway sends a rendered prompt to a model and returns its raw text. The
// text is untouched; interpreting it is the document validator's job.
// Invoke errors wrap ErrTransient or ErrRefusal, except context.Canceled
// from an abandoned caller which passes through unchanged. Error strings
// may carry provider detail for logs; they must never reach clients.
type Gateway interface {
	Invoke(ctx context.Context, payload prompt.Payload) (string, error)
	Name() string
}

// Config selects and tunes the model provider.
type Config struct {
	Provider string
	APIKey   string
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string
	// Timeout bounds each Invoke call.
	Timeout time.Duration
}

// New returns the gateway for cfg.Provider.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return newGeminiGateway(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAIGateway(cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// NewUnconfigured returns a gateway that fails every invocation with
// ErrNotConfigured. It lets the server boot and report health without a
// credential while generation stays disabled.
func NewUnconfigured(provider string) Gateway {
	return unconfiguredGateway{provider: provider}
}

type unconfiguredGateway struct {
	provider string
}

func (g unconfiguredGateway) Name() string { return g.provider }

func (g unconfiguredGateway) Invoke(ctx context.Context, payload prompt.Payload) (string, error) {
	return "", ErrNotConfigured
}

func transient(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransient, fmt.Sprintf(format, args...))
}

func refusal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRefusal, fmt.Sprintf(format, args...))
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

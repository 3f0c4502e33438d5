package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	"github.com/scrumsmith/scrumsmith/internal/document"
	"github.com/scrumsmith/scrumsmith/internal/prompt"
)

// documentSchema is reflected once at startup and handed to the provider as
// a strict response format, so the model is steered toward the same shape
// the validator enforces.
var documentSchema = generateSchema[document.AgileDocument]()

type openaiGateway struct {
	client  openai.Client
	timeout time.Duration
}

func newOpenAIGateway(cfg Config) (*openaiGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is not configured")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// The orchestrator performs the single retry; the SDK must not
		// retry underneath it.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openaiGateway{client: openai.NewClient(opts...), timeout: cfg.Timeout}, nil
}

func (g *openaiGateway) Name() string { return ProviderOpenAI }

func (g *openaiGateway) Invoke(ctx context.Context, payload prompt.Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "agile_document",
		Description: openai.String("Agile documentation package for one meeting transcript"),
		Schema:      documentSchema,
		Strict:      openai.Bool(true),
	}

	started := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: payload.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(payload.Text),
		},
		MaxCompletionTokens: openai.Int(int64(maxOutputTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return "", classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", refusal("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", refusal("openai returned empty content (finish reason %q)", resp.Choices[0].FinishReason)
	}

	log.Debug().
		Str("model", payload.Model).
		Dur("duration", time.Since(started)).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("openai chat completed")

	return text, nil
}

func classifyOpenAI(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return transient("openai chat timed out: %v", err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.StatusCode) {
			return transient("openai api %d: %v", apiErr.StatusCode, err)
		}
		return refusal("openai api %d: %v", apiErr.StatusCode, err)
	}

	// No API response at all; treat network-level failures as retryable.
	return transient("openai chat: %v", err)
}

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

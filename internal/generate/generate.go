// Package generate orchestrates one transcript-to-document attempt:
// admission against the per-client quota, prompt rendering, model
// invocation with a single retry on transient failure, and validation of
// the returned payload.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrumsmith/scrumsmith/internal/document"
	"github.com/scrumsmith/scrumsmith/internal/gateway"
	"github.com/scrumsmith/scrumsmith/internal/prompt"
)

// RateLimitError rejects an attempt from a client that has exhausted its
// window quota. ResetAt is when the client's window rolls over.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, window resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// Limiter admits or rejects attempts per client key. Admission must be
// atomic: a reported slot is already consumed.
type Limiter interface {
	Allow(key string) bool
	ResetAt(key string) time.Time
}

// Builder renders a model-ready payload from a transcript.
type Builder interface {
	Build(transcript, model string) (prompt.Payload, error)
}

// Recorder counts completed sessions.
type Recorder interface {
	RecordSession(itemCount int)
}

// Service runs generation attempts end to end.
type Service struct {
	limiter  Limiter
	builder  Builder
	gateway  gateway.Gateway
	recorder Recorder
}

func NewService(limiter Limiter, builder Builder, gw gateway.Gateway, recorder Recorder) *Service {
	return &Service{limiter: limiter, builder: builder, gateway: gw, recorder: recorder}
}

// Generate produces a validated document from a meeting transcript. The
// quota slot is consumed at admission and is not refunded if the attempt
// fails later, including when the returned payload does not validate.
// Warnings carry non-fatal findings such as scope alerts that reference
// unknown backlog ids.
func (s *Service) Generate(ctx context.Context, clientKey, transcript, modelChoice string) (doc *document.AgileDocument, warnings []string, err error) {
	if !s.limiter.Allow(clientKey) {
		return nil, nil, &RateLimitError{ResetAt: s.limiter.ResetAt(clientKey)}
	}

	started := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		event := log.Info().
			Str("client", clientKey).
			Str("model", modelChoice).
			Str("provider", s.gateway.Name()).
			Str("status", status).
			Dur("duration", time.Since(started))
		if err != nil {
			event = event.Err(err)
		}
		if doc != nil {
			event = event.Int("backlog_items", len(doc.BacklogItems))
		}
		event.Msg("generation finished")
	}()

	payload, err := s.builder.Build(transcript, modelChoice)
	if err != nil {
		return nil, nil, err
	}

	raw, err := s.gateway.Invoke(ctx, payload)
	if err != nil && errors.Is(err, gateway.ErrTransient) && ctx.Err() == nil {
		log.Warn().
			Str("client", clientKey).
			Str("model", payload.Model).
			Err(err).
			Msg("transient provider failure, retrying once")
		raw, err = s.gateway.Invoke(ctx, payload)
	}
	if err != nil {
		return nil, nil, err
	}

	doc, warnings, err = document.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	s.recorder.RecordSession(len(doc.BacklogItems))

	if len(warnings) > 0 {
		log.Warn().
			Str("client", clientKey).
			Strs("issues", warnings).
			Msg("document accepted with warnings")
	}
	return doc, warnings, nil
}

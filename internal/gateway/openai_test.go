package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scrumsmith/scrumsmith/internal/prompt"
)

func TestOpenAIInvoke(t *testing.T) {
	var (
		gotAuth string
		gotPath string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "{\"meeting_summary\":\"ok\"}"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 9, "completion_tokens": 5, "total_tokens": 14}
		}`))
	}))
	t.Cleanup(srv.Close)

	gw, err := New(context.Background(), Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := gw.Invoke(context.Background(), prompt.Payload{Model: "gpt-4o", Text: "summarize the meeting"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if want := `{"meeting_summary":"ok"}`; text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path = %q, want %q", gotPath, "/chat/completions")
	}

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxCompletionTokens int `json:"max_completion_tokens"`
		ResponseFormat      struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Model != "gpt-4o" {
		t.Fatalf("model = %q, want %q", req.Model, "gpt-4o")
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "summarize the meeting" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if req.MaxCompletionTokens != maxOutputTokens {
		t.Fatalf("max_completion_tokens = %d, want %d", req.MaxCompletionTokens, maxOutputTokens)
	}
	if req.ResponseFormat.Type != "json_schema" {
		t.Fatalf("response_format.type = %q, want %q", req.ResponseFormat.Type, "json_schema")
	}
	if req.ResponseFormat.JSONSchema.Name != "agile_document" || !req.ResponseFormat.JSONSchema.Strict {
		t.Fatalf("unexpected json_schema params: %+v", req.ResponseFormat.JSONSchema)
	}
}

func TestOpenAIInvokeEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-2",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": ""}, "finish_reason": "length"}
			],
			"usage": {"prompt_tokens": 9, "completion_tokens": 0, "total_tokens": 9}
		}`))
	}))
	t.Cleanup(srv.Close)

	gw, err := New(context.Background(), Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = gw.Invoke(context.Background(), prompt.Payload{Model: "gpt-4o", Text: "summarize"})
	if !errors.Is(err, ErrRefusal) {
		t.Fatalf("err = %v, want ErrRefusal", err)
	}
}

func TestOpenAIInvokeStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrTransient},
		{"server error", http.StatusInternalServerError, ErrTransient},
		{"bad gateway", http.StatusBadGateway, ErrTransient},
		{"bad request", http.StatusBadRequest, ErrRefusal},
		{"unauthorized", http.StatusUnauthorized, ErrRefusal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "test_error", "param": null, "code": null}}`))
			}))
			t.Cleanup(srv.Close)

			gw, err := New(context.Background(), Config{
				Provider: ProviderOpenAI,
				APIKey:   "test-key",
				BaseURL:  srv.URL,
				Timeout:  5 * time.Second,
			})
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			_, err = gw.Invoke(context.Background(), prompt.Payload{Model: "gpt-4o", Text: "summarize"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenAIInvokeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	gw, err := New(context.Background(), Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Timeout:  20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = gw.Invoke(context.Background(), prompt.Payload{Model: "gpt-4o", Text: "summarize"})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
}

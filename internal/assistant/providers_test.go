package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path string
	key  string
	body map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.key = r.Header.Get("Authorization") + r.Header.Get("X-Api-Key") + r.Header.Get("X-Goog-Api-Key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &c.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestOpenAIGenerate(t *testing.T) {
	srv, c := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "It is **5**."}, "finish_reason": "stop"}]
	}`)

	p := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL+"/v1")
	got, err := p.Generate(context.Background(), Prompt("2 + 3"), Params{Temperature: 0.5, TopP: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "It is **5**.", got)
	assert.Equal(t, "/v1/chat/completions", c.path)
	assert.Contains(t, c.key, "sk-test")
	assert.Equal(t, "gpt-4o-mini", c.body["model"])
	assert.InDelta(t, 0.5, c.body["temperature"], 1e-6)
	assert.InDelta(t, 0.5, c.body["top_p"], 1e-6)
}

func TestOpenAIGenerateError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, `{"error": {"message": "bad request", "type": "invalid_request_error"}}`)

	p := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL+"/v1")
	_, err := p.Generate(context.Background(), "x", Params{})
	require.Error(t, err)

	_, err = NewWithProvider(p, Params{}).Solve(context.Background(), "x")
	assert.ErrorIs(t, err, ErrCommunication)
}

func TestAnthropicGenerate(t *testing.T) {
	srv, c := newServer(t, http.StatusOK, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [{"type": "text", "text": "Step 1: add."}, {"type": "text", "text": " Result: 5"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`)

	p := NewAnthropic("ak-test", "claude-sonnet-4-20250514", srv.URL)
	got, err := p.Generate(context.Background(), Prompt("2 + 3"), Params{Temperature: 0.5, TopP: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "Step 1: add. Result: 5", got)
	assert.Equal(t, "/v1/messages", c.path)
	assert.Contains(t, c.key, "ak-test")
	assert.EqualValues(t, defaultAnthropicMaxTokens, c.body["max_tokens"])
}

func TestAnthropicGenerateError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, `{"type": "error", "error": {"type": "invalid_request_error", "message": "nope"}}`)

	p := NewAnthropic("ak-test", "claude-sonnet-4-20250514", srv.URL)
	_, err := p.Generate(context.Background(), "x", Params{})
	assert.Error(t, err)
}

func TestGeminiGenerate(t *testing.T) {
	srv, c := newServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "The answer is 5."}]}, "finishReason": "STOP"}]
	}`)

	p := NewGemini("gk-test", "gemini-3-flash-preview", srv.URL)
	got, err := p.Generate(context.Background(), Prompt("2 + 3"), Params{Temperature: 0.7, TopP: 0.95})
	require.NoError(t, err)

	assert.Equal(t, "The answer is 5.", got)
	assert.Contains(t, c.path, "gemini-3-flash-preview:generateContent")
	assert.Contains(t, c.key, "gk-test")
}

func TestGeminiGenerateError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, `{"error": {"code": 400, "message": "bad", "status": "INVALID_ARGUMENT"}}`)

	p := NewGemini("gk-test", "gemini-3-flash-preview", srv.URL)
	_, err := p.Generate(context.Background(), "x", Params{})
	assert.Error(t, err)
}

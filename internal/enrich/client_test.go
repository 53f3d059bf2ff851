package enrich_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rollforge/internal/enrich"
)

func messagesServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("X-Api-Key"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, seen))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": `+content+`,
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicClient_Complete(t *testing.T) {
	var seen map[string]any
	srv := messagesServer(t, `[{"type":"text","text":"Hello "},{"type":"text","text":"dice"}]`, &seen)

	c := enrich.NewAnthropicClient(aiConfig(), option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	got, err := c.Complete(context.Background(), "be terse", "roll 2d6")
	require.NoError(t, err)
	assert.Equal(t, "Hello dice", got)

	assert.Equal(t, "claude-test", seen["model"])
	assert.EqualValues(t, 512, seen["max_tokens"])
	system, ok := seen["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "be terse", system[0].(map[string]any)["text"])
}

func TestAnthropicClient_EmptyReply(t *testing.T) {
	var seen map[string]any
	srv := messagesServer(t, `[]`, &seen)

	c := enrich.NewAnthropicClient(aiConfig(), option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := c.Complete(context.Background(), "sys", "prompt")
	assert.ErrorIs(t, err, enrich.ErrEmptyReply)
}

func TestAnthropicClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer srv.Close()

	c := enrich.NewAnthropicClient(aiConfig(), option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := c.Complete(context.Background(), "sys", "prompt")
	assert.Error(t, err)
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) string {
	return `{
	  "id": "chatcmpl-1",
	  "object": "chat.completion",
	  "created": 1736935200,
	  "model": "gpt-4o-mini",
	  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ` + content + `}}]
	}`
}

func TestGenerateContent(t *testing.T) {
	var path, auth string
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(`" Earnings topped forecasts. "`)))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	text, err := client.GenerateContent(context.Background(), "Summarize this")
	require.NoError(t, err)

	assert.Equal(t, "Earnings topped forecasts.", text)
	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "Summarize this", req.Messages[0].Content)
}

func TestGenerateContent_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(`""`)))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GenerateContent(context.Background(), "Summarize this")
	assert.Error(t, err)
}

func TestGenerateContent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.GenerateContent(context.Background(), "Summarize this")
	assert.Error(t, err)
}

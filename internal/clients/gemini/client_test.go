package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerateContent(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Rates are "},{"text":"likely to hold. "}]}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), "test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := client.GenerateContent(context.Background(), "Summarize the Fed decision")
	require.NoError(t, err)

	assert.Equal(t, "Rates are likely to hold.", text)
	assert.True(t, strings.HasSuffix(path, "/models/gemini-2.5-flash:generateContent"), path)
	assert.Contains(t, body, "Summarize the Fed decision")
}

func TestGenerateContent_ModelOverride(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), "test-key", WithBaseURL(srv.URL), WithModel("gemini-2.0-flash"))
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "hi")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "/models/gemini-2.0-flash:generateContent"), path)
}

func TestGenerateContent_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), "test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), "hi")
	assert.Error(t, err)
}

func TestExtractTextFromResponse_Empty(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}},
	})
	assert.Error(t, err)
}

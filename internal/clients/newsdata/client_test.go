package newsdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_ParsesResults(t *testing.T) {
	var query, language, category, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query, language, category, key = q.Get("q"), q.Get("language"), q.Get("category"), q.Get("apikey")
		w.Write([]byte(`{
		  "status": "success",
		  "totalResults": 4,
		  "results": [
		    {"title": "KBC posts higher profit", "link": "https://example.com/kbc", "description": "<p>Bank beats forecasts.</p>", "pubDate": "2025-02-13 07:00:00", "source_id": "tijd"},
		    {"title": "", "link": "https://example.com/empty"},
		    {"title": "Euro rises", "description": null, "pubDate": null, "source_id": null},
		    {"title": "Bund yields fall"}
		  ]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	articles, err := client.Fetch(context.Background(), "KBC Groep", 2)
	require.NoError(t, err)

	assert.Equal(t, "KBC Groep", query)
	assert.Equal(t, "en", language)
	assert.Equal(t, "business", category)
	assert.Equal(t, "test-key", key)

	require.Len(t, articles, 2, "capped client-side")
	assert.Equal(t, "KBC posts higher profit", articles[0].Title)
	assert.Equal(t, "Bank beats forecasts.", articles[0].Description)
	assert.Equal(t, "tijd", articles[0].Source)
	require.NotNil(t, articles[0].PublishedAt)
	assert.True(t, articles[0].PublishedAt.Equal(time.Date(2025, 2, 13, 7, 0, 0, 0, time.UTC)))

	assert.Equal(t, "Euro rises", articles[1].Title)
	assert.Equal(t, "NewsData.io", articles[1].Source)
	assert.Nil(t, articles[1].PublishedAt)
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "results": {"message": "API key invalid", "code": "Unauthorized"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad", WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "markets", 5)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "API key invalid", apiErr.Message)
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "markets", 5)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestFetch_NoCategory(t *testing.T) {
	var hasCategory bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasCategory = r.URL.Query()["category"]
		w.Write([]byte(`{"status": "success", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithCategory(""))
	articles, err := client.Fetch(context.Background(), "markets", 5)
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.False(t, hasCategory)
}

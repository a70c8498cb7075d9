package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_CompanyNews(t *testing.T) {
	var path, symbol, from, to, token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		symbol = r.URL.Query().Get("symbol")
		from = r.URL.Query().Get("from")
		to = r.URL.Query().Get("to")
		token = r.Header.Get("X-Finnhub-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
		  {"headline": "Apple unveils new chip", "summary": "The M5 is faster.", "url": "https://example.com/m5", "source": "CNBC", "datetime": 1736935200},
		  {"headline": "", "url": "https://example.com/empty"},
		  {"headline": "Apple supplier update"}
		]`))
	}))
	defer srv.Close()

	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	client := NewClient("test-key", WithBaseURL(srv.URL), WithClock(func() time.Time { return now }))

	articles, err := client.Fetch(context.Background(), "AAPL", 3)
	require.NoError(t, err)

	assert.Equal(t, "/company-news", path)
	assert.Equal(t, "AAPL", symbol)
	assert.Equal(t, "2025-01-08", from)
	assert.Equal(t, "2025-01-15", to)
	assert.Equal(t, "test-key", token)

	require.Len(t, articles, 2)
	assert.Equal(t, "Apple unveils new chip", articles[0].Title)
	assert.Equal(t, "CNBC", articles[0].Source)
	require.NotNil(t, articles[0].PublishedAt)
	assert.True(t, articles[0].PublishedAt.Equal(time.Unix(1736935200, 0)))

	assert.Equal(t, "Finnhub", articles[1].Source)
	assert.Nil(t, articles[1].PublishedAt)
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "AAPL", 3)
	assert.Error(t, err)
}

func TestGetCompanyMetadata(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "Apple Inc", "ticker": "AAPL", "exchange": "NASDAQ"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	meta, err := client.GetCompanyMetadata(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/stock/profile2", path)
	assert.Equal(t, "Apple Inc", meta.BestName())
}

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/newsdesk/internal/common"
)

// TestNewApp_InitializesAllServices verifies that NewApp creates an App with
// all services and the MCP server initialized and non-nil.
func TestNewApp_InitializesAllServices(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	if a.Config == nil {
		t.Error("Config is nil")
	}
	if a.Logger == nil {
		t.Error("Logger is nil")
	}
	if a.Cache == nil {
		t.Error("Cache is nil")
	}
	if a.Watchlist == nil {
		t.Error("Watchlist is nil")
	}
	if a.Resolver == nil {
		t.Error("Resolver is nil")
	}
	if a.Summarizer == nil {
		t.Error("Summarizer is nil")
	}
	if a.NewsService == nil {
		t.Error("NewsService is nil")
	}
	if a.MCPServer == nil {
		t.Error("MCPServer is nil")
	}
	if a.StartupTime.IsZero() {
		t.Error("StartupTime is zero")
	}
}

// TestNewApp_RegistersAllTools verifies that NewApp registers all expected MCP tools.
func TestNewApp_RegistersAllTools(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	client, err := newInProcessClient(t, a.MCPServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	toolsResult, err := client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	expectedTools := []string{
		"get_version",
		"general_market_news",
		"portfolio_news",
		"list_companies",
	}

	toolNames := make(map[string]bool)
	for _, tool := range toolsResult.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("Expected tool %q to be registered", name)
		}
	}
	if len(toolsResult.Tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(toolsResult.Tools))
	}
}

// TestNewApp_GetVersionToolWorks verifies the get_version tool returns version info.
func TestNewApp_GetVersionToolWorks(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	client, err := newInProcessClient(t, a.MCPServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}
	defer client.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_version"
	result, err := client.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("get_version returned error: %v", result.Content)
	}

	text := result.Content[0].(mcp.TextContent).Text
	if !strings.Contains(text, "Version:") || !strings.Contains(text, "Status: OK") {
		t.Errorf("Unexpected version text: %s", text)
	}
}

// TestNewApp_CloseIsIdempotent verifies Close can be called twice.
func TestNewApp_CloseIsIdempotent(t *testing.T) {
	configPath := writeTestConfig(t)

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if err := a.StartScheduler(); err != nil {
		t.Fatalf("StartScheduler failed: %v", err)
	}

	a.Close()
	a.Close()
}

// TestNewApp_InvalidConfigReturnsError verifies that a malformed config file fails startup.
func TestNewApp_InvalidConfigReturnsError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "newsdesk.toml")
	if err := os.WriteFile(configPath, []byte("[news\ndeadline = "), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := NewApp(configPath); err == nil {
		t.Fatal("Expected error for invalid config")
	}
}

// TestNew_RedisBackend verifies the Redis second level is attached when reachable.
func TestNewApp_WatchlistBesideConfig(t *testing.T) {
	dir := t.TempDir()
	config := `
[logging]
level = "error"

[watchlist]
path = "portfolio-watchlist.toml"
`
	watchlist := `
[[items]]
ticker = "UCB.BR"
`
	configPath := filepath.Join(dir, "newsdesk.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "portfolio-watchlist.toml"), []byte(watchlist), 0644); err != nil {
		t.Fatalf("Failed to write watch list: %v", err)
	}

	a, err := NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	items, err := a.Watchlist.Items(context.Background())
	if err != nil {
		t.Fatalf("Watchlist.Items failed: %v", err)
	}
	if len(items) != 1 || items[0].Ticker != "UCB.BR" {
		t.Errorf("Expected [UCB.BR], got %v", items)
	}
}

func TestNew_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	config := testConfig()
	config.Cache.RedisURL = "redis://" + mr.Addr()

	a, err := New(context.Background(), config, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.redis == nil {
		t.Error("Expected Redis backend to be attached")
	}
}

// TestNew_RedisUnavailableFallsBackToMemory verifies an unreachable Redis does not stop startup.
func TestNew_RedisUnavailableFallsBackToMemory(t *testing.T) {
	config := testConfig()
	config.Cache.RedisURL = "redis://127.0.0.1:1"

	a, err := New(context.Background(), config, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.redis != nil {
		t.Error("Expected no Redis backend")
	}
	if a.Cache == nil {
		t.Error("Expected memory cache")
	}
}

// TestBuildSources_OnlyConfiguredProviders verifies adapters exist only for providers with keys.
func TestBuildSources_OnlyConfiguredProviders(t *testing.T) {
	config := testConfig()
	logger := common.NewSilentLogger()
	a, err := New(context.Background(), config, logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	sources, metadata := buildSources(config, a.Cache, config.Cache.TTL.TTLs(), time.Second, logger)
	if len(sources.General) != 1 || sources.General[0].Name() != "rss" {
		t.Errorf("Expected only the feed as general source, got %d", len(sources.General))
	}
	if len(sources.Company) != 0 || len(sources.TickerNews) != 0 || len(metadata) != 0 {
		t.Error("Expected no keyed providers")
	}

	config.Clients.GNews.APIKey = "g"
	config.Clients.NewsData.APIKey = "n"
	config.Clients.EODHD.APIKey = "e"
	config.Clients.Finnhub.APIKey = "f"

	sources, metadata = buildSources(config, a.Cache, config.Cache.TTL.TTLs(), time.Second, logger)
	names := func(n int, name func(i int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = name(i)
		}
		return out
	}
	general := names(len(sources.General), func(i int) string { return sources.General[i].Name() })
	if strings.Join(general, ",") != "gnews,newsdata,rss" {
		t.Errorf("Unexpected general priority: %v", general)
	}
	company := names(len(sources.Company), func(i int) string { return sources.Company[i].Name() })
	if strings.Join(company, ",") != "gnews,newsdata" {
		t.Errorf("Unexpected company priority: %v", company)
	}
	tickers := names(len(sources.TickerNews), func(i int) string { return sources.TickerNews[i].Name() })
	if strings.Join(tickers, ",") != "eodhd,finnhub" {
		t.Errorf("Unexpected ticker-news priority: %v", tickers)
	}
	if len(metadata) != 2 || metadata[0].Name() != "eodhd" {
		t.Errorf("Unexpected metadata providers: %d", len(metadata))
	}
}

// TestNewTextGenerator_ProviderSelection verifies the summary provider switch.
func TestNewTextGenerator_ProviderSelection(t *testing.T) {
	logger := common.NewSilentLogger()
	ctx := context.Background()

	config := testConfig()
	if g := newTextGenerator(ctx, config, logger); g != nil {
		t.Errorf("Expected nil generator without keys, got %s", g.Name())
	}

	config.Summary.Provider = "openai"
	config.Clients.OpenAI.APIKey = "sk-test"
	if g := newTextGenerator(ctx, config, logger); g == nil || g.Name() != "openai" {
		t.Error("Expected openai generator")
	}

	config.Summary.Provider = "Anthropic"
	config.Clients.Anthropic.APIKey = "sk-ant-test"
	if g := newTextGenerator(ctx, config, logger); g == nil || g.Name() != "anthropic" {
		t.Error("Expected anthropic generator")
	}

	config.Summary.Provider = "gemini"
	config.Clients.Gemini.APIKey = "gm-test"
	if g := newTextGenerator(ctx, config, logger); g == nil || g.Name() != "gemini" {
		t.Error("Expected gemini generator")
	}

	config.Summary.Provider = "unknown"
	if g := newTextGenerator(ctx, config, logger); g != nil {
		t.Error("Expected nil generator for unknown provider")
	}
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{-1: 0, 0: 0, 3: 3, MaxLimit: MaxLimit, 500: MaxLimit}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

// testConfig returns a default configuration with no provider keys
func testConfig() *common.Config {
	config := common.NewDefaultConfig()
	config.Logging.Level = "error"
	config.Watchlist.Items = []common.WatchlistItem{{Ticker: "ASML"}}
	return config
}

// writeTestConfig creates a minimal newsdesk.toml in a temp directory for testing.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	config := `
[logging]
level = "error"

[news]
warm_schedule = "@every 1h"

[[watchlist.items]]
ticker = "ASML"

[[watchlist.items]]
ticker = "KBC.BR"
name = "KBC Group"
`
	configPath := filepath.Join(dir, "newsdesk.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

// newInProcessClient creates an mcp-go in-process client connected to the given
// MCP server. Handles initialization handshake.
func newInProcessClient(t *testing.T, mcpServer *server.MCPServer) (*client.Client, error) {
	t.Helper()

	c, err := client.NewInProcessClient(mcpServer)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

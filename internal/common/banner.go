package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/banner"
)

var bannerArt = []string{
	` _   _  _____ __        __ ____   ____   _____  ____   _  __`,
	`| \ | || ____|\ \      / // ___| |  _ \ | ____|/ ___| | |/ /`,
	`|  \| ||  _|   \ \ /\ / / \___ \ | | | ||  _|  \___ \ | ' / `,
	`| |\  || |___   \ V  V /   ___) || |_| || |___  ___) || . \ `,
	`|_| \_||_____|   \_/\_/   |____/ |____/ |_____||____/ |_|\_\`,
}

// NewsSources lists the configured news sources in fallback order
func NewsSources(config *Config) []string {
	var sources []string
	if config.Clients.GNews.APIKey != "" {
		sources = append(sources, "gnews")
	}
	if config.Clients.NewsData.APIKey != "" {
		sources = append(sources, "newsdata")
	}
	if config.Clients.RSS.URL != "" {
		sources = append(sources, "rss")
	}
	if config.Clients.EODHD.APIKey != "" {
		sources = append(sources, "eodhd")
	}
	if config.Clients.Finnhub.APIKey != "" {
		sources = append(sources, "finnhub")
	}
	return sources
}

// bannerRows returns the key/value rows shown under the startup art
func bannerRows(config *Config) [][2]string {
	cache := "memory"
	if config.Cache.RedisURL != "" {
		cache = "memory + redis"
	}
	watchlist := config.Watchlist.Path
	if watchlist == "" {
		watchlist = fmt.Sprintf("inline (%d tickers)", len(config.Watchlist.Items))
	}
	warm := config.News.WarmSchedule
	if warm == "" {
		warm = "disabled"
	}
	sources := strings.Join(NewsSources(config), " > ")
	if sources == "" {
		sources = "none"
	}

	return [][2]string{
		{"Version", fmt.Sprintf("%s (build %s, %s)", GetVersion(), GetBuild(), GetGitCommit())},
		{"Environment", config.Environment},
		{"REST", fmt.Sprintf("http://%s:%d/api/news", config.Server.Host, config.Server.Port)},
		{"MCP", fmt.Sprintf("http://%s:%d/mcp", config.Server.Host, config.Server.Port)},
		{"Sources", sources},
		{"Summaries", config.Summary.Provider},
		{"Watch list", watchlist},
		{"Cache", cache},
		{"Warm schedule", warm},
	}
}

func writeBanner(w io.Writer, config *Config) {
	textColor := banner.ColorBold + banner.ColorWhite
	hr := banner.ColorCyan + strings.Repeat("═", 70) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range bannerArt {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Market & Portfolio News Desk%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	for _, kv := range bannerRows(config) {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintBanner displays the startup banner on stderr and logs the same settings.
func PrintBanner(config *Config, logger *Logger) {
	writeBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Int("port", config.Server.Port).
		Strs("sources", NewsSources(config)).
		Str("summary_provider", config.Summary.Provider).
		Bool("redis", config.Cache.RedisURL != "").
		Str("warm_schedule", config.News.WarmSchedule).
		Msg("News desk started")
}

func writeShutdownBanner(w io.Writer, uptime time.Duration) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset
	fmt.Fprintf(w, "\n%s\n%s  NEWSDESK CLOSING (up %s)%s\n%s\n\n",
		hr, banner.ColorBold+banner.ColorWhite, uptime.Round(time.Second), banner.ColorReset, hr)
}

// PrintShutdownBanner displays the shutdown banner on stderr with the process uptime.
func PrintShutdownBanner(logger *Logger, uptime time.Duration) {
	writeShutdownBanner(os.Stderr, uptime)
	logger.Info().Dur("uptime", uptime).Msg("News desk shutting down")
}

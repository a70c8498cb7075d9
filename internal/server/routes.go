package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/newsdesk/internal/app"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/models"
	"github.com/bobmcallan/newsdesk/internal/services/report"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// News
	mux.HandleFunc("/api/news/general", s.handleGeneralNews)
	mux.HandleFunc("/api/news/portfolio", s.handlePortfolioNews)
	mux.HandleFunc("/api/news/companies", s.handleCompanies)

	// MCP over Streamable HTTP
	if s.app.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
			mcpserver.WithStateLess(true),
		))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// handleGeneralNews handles GET /api/news/general?limit=N
func (s *Server) handleGeneralNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	feed := s.app.NewsService.GeneralMarket(r.Context(), limit)
	writeFeed(w, r, feed)
}

// handlePortfolioNews handles GET /api/news/portfolio?selection=NAME&limit=N
func (s *Server) handlePortfolioNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	selection := strings.TrimSpace(r.URL.Query().Get("selection"))
	if selection == "" {
		selection = models.MostImportantHeadlines
	}

	feed := s.app.NewsService.PortfolioNews(r.Context(), selection, limit)
	writeFeed(w, r, feed)
}

// handleCompanies handles GET /api/news/companies
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	companies := s.app.NewsService.Companies(r.Context())
	if companies == nil {
		companies = []models.Company{}
	}

	options := make([]string, 0, len(companies)+1)
	options = append(options, models.MostImportantHeadlines)
	for _, c := range companies {
		options = append(options, c.Name)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"companies": companies,
		"options":   options,
	})
}

// parseLimit reads the optional limit query parameter. Zero means the service default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		WriteErrorWithCode(w, http.StatusBadRequest, "limit must be a non-negative integer", "invalid_limit")
		return 0, false
	}
	return app.ClampLimit(n), true
}

// writeFeed writes the feed as JSON, or as markdown when format=markdown
func writeFeed(w http.ResponseWriter, r *http.Request, feed *models.NewsFeed) {
	if strings.EqualFold(r.URL.Query().Get("format"), "markdown") {
		WriteMarkdown(w, http.StatusOK, report.FormatFeed(feed))
		return
	}
	if feed.Articles == nil {
		feed.Articles = []models.Article{}
	}
	WriteJSON(w, http.StatusOK, feed)
}

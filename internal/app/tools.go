package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the newsdesk server version and status. Use this to verify connectivity."),
	)
}

// createGeneralMarketNewsTool returns the general_market_news tool definition
func createGeneralMarketNewsTool() mcp.Tool {
	return mcp.NewTool("general_market_news",
		mcp.WithDescription("Get the latest general market headlines (stock market, economy, investing) with a short summary per article."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum articles to return (default: 5, max: 20)"),
		),
	)
}

// createPortfolioNewsTool returns the portfolio_news tool definition
func createPortfolioNewsTool() mcp.Tool {
	return mcp.NewTool("portfolio_news",
		mcp.WithDescription("Get headlines for the portfolio. The default selection 'Most important headlines' takes one headline per company in portfolio order; a company name or ticker returns news for that company only."),
		mcp.WithString("selection",
			mcp.Description("'Most important headlines' (default), or a company name or ticker from list_companies"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum articles to return (default: 5, max: 20)"),
		),
	)
}

// createListCompaniesTool returns the list_companies tool definition
func createListCompaniesTool() mcp.Tool {
	return mcp.NewTool("list_companies",
		mcp.WithDescription("List the portfolio companies with their resolved names. Use these names as portfolio_news selections."),
	)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/newsdesk/internal/app"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
	"github.com/bobmcallan/newsdesk/internal/services/report"
)

// serviceFactory builds the news service for a config path and returns its cleanup
type serviceFactory func(configPath string) (interfaces.NewsService, func(), error)

func appFactory(configPath string) (interfaces.NewsService, func(), error) {
	a, err := app.NewApp(configPath)
	if err != nil {
		return nil, nil, err
	}
	return a.NewsService, a.Close, nil
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	var (
		flagConfig    string
		flagLimit     int
		flagSelection string
	)

	withService := func(run func(cmd *cobra.Command, svc interfaces.NewsService) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := factory(flagConfig)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer cleanup()
			return run(cmd, svc)
		}
	}

	rootCmd := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Market and portfolio news from the terminal",
		Long:          "newsdesk aggregates market headlines and portfolio company news, deduplicates them and adds a short summary to each.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	generalCmd := &cobra.Command{
		Use:   "general",
		Short: "Show general market headlines",
		RunE: withService(func(cmd *cobra.Command, svc interfaces.NewsService) error {
			feed := svc.GeneralMarket(cmd.Context(), app.ClampLimit(flagLimit))
			fmt.Fprint(cmd.OutOrStdout(), report.FormatFeed(feed))
			return nil
		}),
	}
	generalCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "maximum articles (default from config)")

	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show portfolio headlines, or news for one company",
		RunE: withService(func(cmd *cobra.Command, svc interfaces.NewsService) error {
			feed := svc.PortfolioNews(cmd.Context(), flagSelection, app.ClampLimit(flagLimit))
			fmt.Fprint(cmd.OutOrStdout(), report.FormatFeed(feed))
			return nil
		}),
	}
	portfolioCmd.Flags().StringVarP(&flagSelection, "selection", "s", models.MostImportantHeadlines, "company name or ticker")
	portfolioCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "maximum articles (default from config)")

	companiesCmd := &cobra.Command{
		Use:   "companies",
		Short: "List portfolio companies",
		RunE: withService(func(cmd *cobra.Command, svc interfaces.NewsService) error {
			fmt.Fprint(cmd.OutOrStdout(), report.FormatCompanies(svc.Companies(cmd.Context())))
			return nil
		}),
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsdesk %s\n", common.GetFullVersion())
		},
	}

	rootCmd.AddCommand(generalCmd, portfolioCmd, companiesCmd, versionCmd)
	return rootCmd
}

func main() {
	common.LoadVersionFromFile()

	if err := newRootCmd(appFactory).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

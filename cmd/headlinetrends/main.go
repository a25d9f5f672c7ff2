// Command headlinetrends fetches, enriches and caches per-country top headlines
// and serves them to the dashboard.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"HeadlineTrends/internal/app"
	"HeadlineTrends/internal/config"
	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/logging"
	"HeadlineTrends/internal/usecase"
)

var (
	cfg         config.Config
	application *app.Application
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:           "headlinetrends",
	Short:         "Fetch, enrich and cache top headlines per country",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.Logging.Level = level
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		application, err = app.New(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $HEADLINE_TRENDS_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	headlinesCmd.Flags().Bool("json", false, "print rows as JSON")

	rootCmd.AddCommand(fetchCmd, transformCmd, headlinesCmd, summaryCmd, countriesCmd, clearCmd, serveCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [country...]",
	Short: "Fetch top headlines and cache the raw entry (all configured countries by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, cc := range countriesOrDefault(args) {
			n, err := application.Pipeline().Extract(cmd.Context(), cc)
			if errors.Is(err, domain.ErrNoArticles) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no articles to save\n", cc)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: saved %d articles\n", cc, n)
		}
		return nil
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform [country...]",
	Short: "Clean and enrich cached raw headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, cc := range countriesOrDefault(args) {
			rows, err := application.Pipeline().Transform(cmd.Context(), cc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cached %d cleaned articles\n", cc, len(rows))
		}
		return nil
	},
}

var headlinesCmd = &cobra.Command{
	Use:   "headlines <country>",
	Short: "Show cleaned headlines, running the pipeline when nothing is cached",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := application.Pipeline().Headlines(cmd.Context(), application.Session(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), rows)
		}
		renderTable(cmd.OutOrStdout(), headlineTable(rows))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <country>",
	Short: "Print topic, sentiment and time aggregates of a cached country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := domain.NormalizeCountry(args[0])
		if err != nil {
			return err
		}
		rows, err := application.Pipeline().Cleaned(cmd.Context(), cc)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), usecase.Summarize(cc, rows))
	},
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List configured and cached countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cached, err := application.Pipeline().CachedCountries(cmd.Context())
		if err != nil {
			return err
		}

		cachedSet := make(map[string]bool, len(cached))
		for _, cc := range cached {
			cachedSet[cc] = true
		}

		table := [][]string{{"COUNTRY", "CACHED"}}
		for _, cc := range cfg.Countries {
			status := "no"
			if cachedSet[cc] {
				status = "yes"
			}
			table = append(table, []string{cc, status})
		}
		renderTable(cmd.OutOrStdout(), table)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every raw and cleaned cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Pipeline().ClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return application.Serve(ctx)
	},
}

func countriesOrDefault(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Countries
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return 3
	case errors.Is(err, domain.ErrNoArticles), errors.Is(err, domain.ErrNotFound):
		return 2
	default:
		return 1
	}
}

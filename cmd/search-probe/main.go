// Command search-probe fires concurrent searches at a running jobscout server
// and verifies each response.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/jobscout/internal/probe"
	"github.com/okian/jobscout/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests = 200
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
	defaultLimit    = 12
	defaultMaxPage  = 3
	defaultRunLimit = 10 * time.Minute
)

var (
	cfg = probe.Config{}

	titles    string
	locations string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "search-probe",
	Short: "Concurrent consistency probe for the jobscout API",
	Long: `Sends a rotating mix of searches to a running jobscout server and checks
every response: scores within [0,1] and non-increasing, page size within the
limit, has_more consistent with total_count, and per-source errors reflected
in the sources map. Exits non-zero when any check fails.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose {
			_ = logger.SetLevelString("debug")
		}
		cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		cfg.Titles = splitList(titles)
		cfg.Locations = splitList(locations)
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg.Verbose = verbose
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunLimit)
		defer cancel()
		_, err := probe.Run(ctx, &cfg)
		return err
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [partial]",
	Short: "Print title and location suggestions for a partial string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suggested, places, err := probe.Suggest(cmd.Context(), &cfg, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "titles:")
		for _, t := range suggested {
			fmt.Fprintln(out, "  "+t)
		}
		fmt.Fprintln(out, "locations:")
		for _, l := range places {
			fmt.Fprintln(out, "  "+l)
		}
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&cfg.BaseURL, "url", "u", probe.DefaultBaseURL, "Base URL of the service")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log every checked response")

	rootCmd.Flags().IntVarP(&cfg.Requests, "requests", "n", defaultRequests, "Number of searches to send")
	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	rootCmd.Flags().IntVar(&cfg.Limit, "limit", defaultLimit, "Page size to request")
	rootCmd.Flags().IntVar(&cfg.MaxPage, "max-page", defaultMaxPage, "Highest page to request")
	rootCmd.Flags().StringVar(&titles, "titles", "", "Comma separated titles (default: built-in list)")
	rootCmd.Flags().StringVar(&locations, "locations", "", "Comma separated locations (default: built-in list)")

	rootCmd.AddCommand(suggestCmd)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	// JOBSCOUT_PROBE_URL and friends may live in .env.
	_ = godotenv.Load()
	if u := os.Getenv("JOBSCOUT_PROBE_URL"); u != "" {
		_ = rootCmd.PersistentFlags().Set("url", u)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/filmforum/config"
	"github.com/s0up4200/filmforum/filmapi"
	"github.com/s0up4200/filmforum/filter"
	"github.com/s0up4200/filmforum/metrics"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	client        *filmapi.Client
	filterManager *filter.Manager
	collector     *metrics.Collector

	// Global flags
	baseURL     string
	diagnostics bool
	verbose     bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "filmforum",
	Short: "A command line client for the FilmForum film API",
	Long: `filmforum searches and browses the FilmForum film catalog, logs in and
registers accounts, and can run a local mock of the API for development.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: reportDiagnostics,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records the build information reported by the version and
// update commands
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "film API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().BoolVar(&diagnostics, "diagnostics", false, "print request outcome counters after the command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if cmd.Flags().Changed("url") {
		cfg.API.BaseURL = baseURL
	}
	if cmd.Flags().Changed("diagnostics") {
		cfg.Diagnostics.Enabled = diagnostics
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	opts := []filmapi.Option{
		filmapi.WithTimeout(cfg.API.Timeout),
		filmapi.WithUserAgent(cfg.API.UserAgent),
		filmapi.WithSearchErrorHook(func(err *filmapi.SearchError) {
			logger.Warn().Err(err).Msg("Search failed, showing no results")
		}),
	}

	if cfg.Diagnostics.Enabled {
		collector = metrics.NewCollector(prometheus.NewRegistry())
		opts = append(opts, filmapi.WithObserver(collector))
	}

	// Create film API client
	client, err = filmapi.NewClient(cfg.API.BaseURL, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create film API client: %w", err)
	}

	filterManager = filter.NewManager()
	if err := filterManager.RegisterPresets(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter presets: %w", err)
	}

	logger.Debug().
		Str("base_url", client.BaseURL()).
		Strs("presets", filterManager.Presets()).
		Msg("Initialized")

	return nil
}

// reportDiagnostics prints the per operation outcome counters
func reportDiagnostics(cmd *cobra.Command, args []string) error {
	if collector == nil {
		return nil
	}

	samples := collector.Summary()
	if len(samples) == 0 {
		return nil
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-12s %-20s %s\n", "OPERATION", "OUTCOME", "COUNT")
	for _, s := range samples {
		fmt.Fprintf(out, "%-12s %-20s %d\n", s.Operation, s.Outcome, s.Count)
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colour only when stderr is a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

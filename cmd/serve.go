package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/filmforum/mockserver"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local mock of the film API",
	Long: `Run an in-memory implementation of the film API for development and testing.
Accounts live only for the lifetime of the process. Metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides server.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	secret := cfg.Server.JWTSecret
	if secret == "" {
		secret = "filmforum-dev-secret"
		logger.Warn().Msg("server.jwt_secret is not set, using an insecure development secret")
	}

	srv, err := mockserver.New(mockserver.Config{
		JWTSecret:      secret,
		TokenTTL:       cfg.Server.TokenTTL,
		AdminSecret:    cfg.Server.AdminSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create mock server: %w", err)
	}

	return srv.ListenAndServe(cmd.Context(), addr)
}

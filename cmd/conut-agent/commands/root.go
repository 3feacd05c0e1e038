package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conut-agent/internal/activity"
	"conut-agent/internal/api"
	"conut-agent/internal/config"
	"conut-agent/internal/gateway"
	"conut-agent/internal/logging"
	"conut-agent/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	gatewayClient gateway.Client
)

var rootCmd = &cobra.Command{
	Use:   "conut-agent",
	Short: "Conut COO Agent serves retail analytics tools over HTTP",
	Long: `An operations analytics backend for the Conut branch network. It exposes
staffing estimation, cross-branch benchmarking, demand forecasting, combo
mining, expansion scoring, and growth strategy as agent-ready tool endpoints.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		// Initialize agent gateway client
		gatewayClient = gateway.NewClient(cfg.Gateway)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Conut COO Agent starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		server := api.NewServer(cfg, activity.NewLog(), gatewayClient, metrics.New())

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("HTTP server failed")
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info().Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

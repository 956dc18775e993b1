package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onrus/powermax-logins/internal/config"
	"github.com/onrus/powermax-logins/internal/observability"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
	logFile  string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "powermax-logins",
	Short: "PowerMax/VMAX fibre channel login reporter",
	Long: `powermax-logins dumps "symaccess list logins -v" reports from locally
visible PowerMax and VMAX arrays and parses them into one CSV of fibre
channel logins per initiator and front-end port.

Example:
  powermax-logins collect
  powermax-logins parse
  powermax-logins parse reports/*.txt --filter '^100000051e' -o hba-logins.csv`,
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append log output to this file")
}

// setup loads the configuration, applies the persistent flag overrides
// and initializes logging and tracing. The returned cleanup flushes the
// tracer and must be deferred by the caller.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if rootCmd.PersistentFlags().Changed("log-file") {
		cfg.LogFile = logFile
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("version", version).
		Msg("Starting powermax-logins")

	shutdown, err := observability.InitTracer(observability.TracerConfig{
		ServiceName:    "powermax-logins",
		ServiceVersion: version,
		Endpoint:       cfg.TracingEndpoint,
		Protocol:       cfg.TracingProtocol,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize tracer")
		shutdown = func(context.Context) error { return nil }
	}

	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}
	return cfg, cleanup, nil
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onrus/powermax-logins/internal/service"
)

var (
	parseOutput string
	parseFilter string
	parseState  string
	parseDir    string
)

var parseCmd = &cobra.Command{
	Use:   "parse [path|glob ...]",
	Short: "Parse login reports into a CSV",
	Long: `Parse "symaccess list logins -v" report files into one CSV of fibre
channel logins. With no arguments the report directory is searched for
files the collect command wrote; arguments may be files, directories or
glob patterns and are parsed in the order given.

Example:
  powermax-logins parse
  powermax-logins parse reports/ --state parse-state.db
  powermax-logins parse 'reports/logins-0001979*.txt' --filter '^100000051e'`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "CSV output file (default logins.csv)")
	parseCmd.Flags().StringVar(&parseFilter, "filter", "", "regexp exported portWwn values must match")
	parseCmd.Flags().StringVar(&parseState, "state", "", "parse state database, skips unchanged files on re-runs")
	parseCmd.Flags().StringVarP(&parseDir, "dir", "d", "", "directory searched when no paths are given")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if cmd.Flags().Changed("output") {
		cfg.OutputPath = parseOutput
	}
	if cmd.Flags().Changed("filter") {
		cfg.PortWWNFilter = parseFilter
	}
	if cmd.Flags().Changed("state") {
		cfg.StatePath = parseState
	}
	if cmd.Flags().Changed("dir") {
		cfg.ReportDir = parseDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.NewParseService(cfg)
	if err != nil {
		return err
	}
	_, err = svc.Run(ctx, args)
	return err
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onrus/powermax-logins/internal/service"
)

var (
	collectDir        string
	collectSymcli     string
	collectCheckpoint string
)

var collectCmd = &cobra.Command{
	Use:   "collect [arrayID ...]",
	Short: "Dump login reports from locally visible arrays",
	Long: `Collect one "symaccess list logins -v" report file per array into the
report directory. With no arguments the arrays are discovered from the
SYMCLI inventory; arguments restrict the run to the given identifiers.

Example:
  powermax-logins collect
  powermax-logins collect 000197901042 --dir reports/`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVarP(&collectDir, "dir", "d", "", "directory the report files are written to")
	collectCmd.Flags().StringVar(&collectSymcli, "symcli-path", "", "symaccess binary or its directory, probes common locations when empty")
	collectCmd.Flags().StringVar(&collectCheckpoint, "checkpoint", "", "collection checkpoint file, an empty value disables it")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if cmd.Flags().Changed("dir") {
		cfg.ReportDir = collectDir
	}
	if cmd.Flags().Changed("symcli-path") {
		cfg.SymcliPath = collectSymcli
	}
	if cmd.Flags().Changed("checkpoint") {
		cfg.CheckpointPath = collectCheckpoint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.NewCollectService(cfg)
	if err != nil {
		return err
	}
	_, err = svc.Run(ctx, args)
	return err
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run once: collect, diff against the last snapshot, save and notify",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "diff against nothing and save nothing; every listing is reported NEW")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	a, err := setupApp(os.Stdout, runDryRun)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.runner.Run(ctx); err != nil {
		a.logger.Error("run failed", "error", err)
		return err
	}
	return nil
}

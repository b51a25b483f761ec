package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobby/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduling daemon",
	Long:  "Run once immediately, then on the configured cron schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := setupApp(os.Stdout, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) error {
		_, err := a.runner.Run(ctx)
		return err
	}
	if err := scheduler.New(job, a.cfg.Schedule, a.logger).Run(ctx); err != nil {
		a.logger.Error("scheduler error", "error", err)
		return err
	}

	a.logger.Info("goodbye")
	return nil
}

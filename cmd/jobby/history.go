package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobby/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs (sqlite store only)",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Type != "sqlite" {
		return errors.New("history needs store.type: sqlite; the csv store keeps only the last run")
	}

	s, err := store.NewSQLiteStore(cfg.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-36s  %-20s %6s %6s %6s %6s\n", "Run", "Started (UTC)", "Total", "New", "Old", "Gone")
	fmt.Fprintln(out, strings.Repeat("─", 88))
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-20s %6d %6d %6d %6d\n",
			r.ID, r.StartedAt.UTC().Format("2006-01-02 15:04:05"), r.Total, r.New, r.Old, r.Gone)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "(no runs yet)")
	}
	return nil
}

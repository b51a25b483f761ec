package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobby/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers",
	Long:  "Reads the config and prints a table of every provider entry and whether it can be built.",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-15s %-30s %s\n", "Kind", "Name", "Status")
	fmt.Fprintln(out, strings.Repeat("─", 60))

	ok, bad := 0, 0
	deps := provider.Deps{Logger: setupLogger(cmd.ErrOrStderr(), debug)}
	for _, entry := range cfg.Providers {
		status := "ok"
		if _, err := provider.New(entry, deps); err != nil {
			status = err.Error()
			bad++
		} else {
			ok++
		}
		fmt.Fprintf(out, "%-15s %-30s %s\n", entry.Kind, entry.Key, status)
	}

	fmt.Fprintf(out, "\nTotal: %d providers (%d ok, %d invalid)\n", len(cfg.Providers), ok, bad)
	fmt.Fprintf(out, "Supported kinds: %s\n", strings.Join(provider.Kinds(), ", "))
	return nil
}

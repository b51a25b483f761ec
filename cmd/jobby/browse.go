package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobby/internal/browse"
	"github.com/amishk599/jobby/internal/model"
	"github.com/amishk599/jobby/internal/store"
)

var browseDryRun bool

var browseCmd = &cobra.Command{
	Use:   "browse [RESULT.csv]",
	Short: "Browse a run's result interactively",
	Long: "Without arguments, performs a run behind a spinner and opens the result in an interactive viewer. " +
		"With a CSV file written by `run` or `diff`, opens that file instead.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseDryRun, "dry-run", false, "diff against nothing and save nothing")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		result, err := store.ReadResultFile(args[0])
		if err != nil {
			return err
		}
		return browse.RunViewer(result)
	}

	// Logs would tear the spinner; only show them when asked to.
	var logOut io.Writer = io.Discard
	if debug {
		logOut = os.Stderr
	}
	a, err := setupApp(logOut, browseDryRun)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := browse.RunLoader(context.Background(), "Collecting listings from "+a.cfg.Name+" providers",
		func(ctx context.Context) (model.Result, error) { return a.runner.Run(ctx) })
	if err != nil {
		return err
	}
	return browse.RunViewer(result)
}

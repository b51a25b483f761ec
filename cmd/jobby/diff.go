package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobby/internal/diff"
	"github.com/amishk599/jobby/internal/model"
	"github.com/amishk599/jobby/internal/store"
)

var diffOutput string

var diffCmd = &cobra.Command{
	Use:   "diff OLD.csv NEW.csv",
	Short: "Diff two saved CSV snapshots",
	Long: "Labels every listing in either file NEW, OLD or GONE and writes the result as CSV. " +
		"GONE rows in OLD.csv are ignored, as they are when a run loads its previous snapshot.",
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "", "write the result to this file instead of stdout")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	prev, err := readSnapshot(args[0])
	if err != nil {
		return err
	}
	cur, err := readSnapshot(args[1])
	if err != nil {
		return err
	}

	result := diff.Diff(prev, cur)

	if diffOutput == "" {
		return store.WriteResult(cmd.OutOrStdout(), result)
	}
	if err := store.NewCSVStore(diffOutput).Save(result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d new, %d old, %d gone → %s\n",
		result.Count(model.LabelNew), result.Count(model.LabelOld), result.Count(model.LabelGone), diffOutput)
	return nil
}

func readSnapshot(path string) (*model.Collection, error) {
	res, err := store.ReadResultFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return store.SnapshotOf(res), nil
}


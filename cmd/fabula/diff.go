package main

import (
	"os"

	"github.com/spf13/cobra"

	"fabula/pkg/diff"
	"fabula/pkg/utils"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.json> <new.json>",
	Short: "Show what changed between two manuscript drafts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldM, err := utils.Load[map[string]string](args[0])
		if err != nil {
			return err
		}
		newM, err := utils.Load[map[string]string](args[1])
		if err != nil {
			return err
		}

		d := diff.RevisionDiff{Chapters: diff.Manuscripts(oldM, newM)}
		d.Print(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skill-catalog/internal/csvimport"
)

var updateStatsCmd = &cobra.Command{
	Use:   "update-stats FILE",
	Short: "Update base stats of catalogued characters from a stats CSV",
	Long: `Update-stats reads a twelve-column stats CSV (character name, HP,
ATK, DEF, SPD, EP and three stat boost type/value pairs) and updates
characters matched by exact name. Blank cells clear the stored value.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdateStats,
}

func runUpdateStats(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := csvimport.New(logger).ParseStats(f)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.UpdateStats(cmd.Context(), res.Rows)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, name := range summary.Updated {
		fmt.Fprintf(w, "updated   %s\n", name)
	}
	for _, name := range summary.NotFound {
		fmt.Fprintf(w, "not found %s\n", name)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning   %s\n", warning)
	}
	fmt.Fprintf(w, "\nupdated: %d, not found: %d, skipped: %d\n",
		len(summary.Updated), len(summary.NotFound), len(res.Warnings))
	return nil
}

func init() {
	rootCmd.AddCommand(updateStatsCmd)
}

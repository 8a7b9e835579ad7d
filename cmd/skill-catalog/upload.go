// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skill-catalog/internal/catalog"
	"github.com/pdiddy/skill-catalog/internal/csvimport"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Parse character CSV files and store them in the catalog",
	Long: `Upload parses each character CSV, derives buff and debuff records from
free-text skill descriptions (or takes structured バフ rows as written),
and stores the result. Uploading a character again replaces its skills,
effects and eidolon enhancements.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	importer := csvimport.New(logger)
	w := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		if err := uploadFile(cmd.Context(), w, importer, store, path); err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to upload", failed)
	}
	return nil
}

func uploadFile(ctx context.Context, w io.Writer, importer *csvimport.Importer, store *catalog.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := importer.Parse(f)
	if err != nil {
		return err
	}
	summary, err := store.Import(ctx, &res.Import)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "imported %s (id %d): %d skills, %d effects, %d eidolon enhancements\n",
		res.Import.Character.Name, summary.CharacterID,
		summary.Skills, summary.Effects, summary.Enhancements)
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	if summary.Unresolved > 0 {
		fmt.Fprintf(w, "  warning: %d eidolon enhancements reference unknown effects\n", summary.Unresolved)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

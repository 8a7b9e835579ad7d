// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a character with its skills and effects to YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if output == "" {
		return store.Export(cmd.Context(), id, format, cmd.OutOrStdout())
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := store.Export(cmd.Context(), id, format, f); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported character %d to %s\n", id, output)
	return nil
}

func init() {
	exportCmd.Flags().StringP("format", "f", "yaml", "export format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}

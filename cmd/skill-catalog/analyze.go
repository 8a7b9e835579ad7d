// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/skill-catalog/internal/effect"
	"github.com/pdiddy/skill-catalog/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --category CATEGORY TEXT...",
	Short: "Extract effect records from one skill description",
	Long: `Analyze runs the effect extractor on a single description and prints
the records it finds as YAML. Nothing is stored.

Categories accept Japanese or English labels: 戦闘スキル, "combat skill",
追加効果2, eidolon-4 and so on.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("category")
	category, err := types.ParseCategory(label)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if showRules, _ := cmd.Flags().GetBool("rules"); showRules {
		names := effect.RuleNames(category)
		if len(names) == 0 {
			fmt.Fprintf(w, "no rules for %s\n", category)
		}
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("description required")
	}
	records := effect.Extract(category, strings.Join(args, " "))
	if len(records) == 0 {
		fmt.Fprintln(w, "no effects found")
		return nil
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(records)
}

func init() {
	analyzeCmd.Flags().StringP("category", "c", "", "skill category, e.g. 戦闘スキル or combat-skill")
	analyzeCmd.Flags().Bool("rules", false, "list the extraction rules for the category instead")
	analyzeCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(analyzeCmd)
}

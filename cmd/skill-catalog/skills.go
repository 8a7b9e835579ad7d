// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

var skillsCmd = &cobra.Command{
	Use:   "skills ID",
	Short: "Show a character's skills and their effects",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkills,
}

func runSkills(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	groups, err := store.Skills(cmd.Context(), id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(w, groups)
	}
	printSkillGroup(w, "Combat skills", groups.Combat)
	printSkillGroup(w, "Additional effects", groups.AdditionalEffects)
	printSkillGroup(w, "Eidolons", groups.Eidolons)
	return nil
}

func printSkillGroup(w io.Writer, title string, skills []types.Skill) {
	if len(skills) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title)))
	for _, s := range skills {
		fmt.Fprintf(w, "[%s] %s\n", s.Category, s.Name)
		if s.Description != "" {
			fmt.Fprintf(w, "  %s\n", s.Description)
		}
		for _, e := range s.Effects {
			fmt.Fprintf(w, "  - %s: %s %s, %s, %s", e.EffectName, e.StatAffected, e.ValueExpression, e.TargetType, e.Duration)
			if e.IsStackable {
				fmt.Fprintf(w, ", up to %d stacks", e.MaxStacks)
			}
			if e.Condition != "" {
				fmt.Fprintf(w, " [%s]", e.Condition)
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

var buffsCmd = &cobra.Command{
	Use:   "buffs ID",
	Short: "List a character's buffs and debuffs at an eidolon level",
	Long: `Buffs lists every effect of the character's base skills, followed by the
eidolon enhancements unlocked at or below --eidolon.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuffs,
}

func runBuffs(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	level, _ := cmd.Flags().GetInt("eidolon")
	if level < 0 || level > types.MaxEidolonLevel {
		return fmt.Errorf("--eidolon must be 0-%d", types.MaxEidolonLevel)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	buffs, err := store.Buffs(cmd.Context(), id, level)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if buffs == nil {
			buffs = []types.BuffView{}
		}
		return writeJSON(w, buffs)
	}
	if len(buffs) == 0 {
		fmt.Fprintln(w, "No buffs or debuffs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-22s  %-32s  %-28s  %-12s  %-22s  %s\n",
		"Skill", "Effect", "Value", "Target", "Duration", "Note")
	fmt.Fprintln(w, strings.Repeat("-", 130))
	for _, b := range buffs {
		value := b.Value
		if b.IsStackable {
			value = fmt.Sprintf("%s (x%d)", value, b.MaxStacks)
		}
		fmt.Fprintf(w, "%-22s  %-32s  %-28s  %-12s  %-22s  %s\n",
			b.Skill, b.Name, value, b.Target, b.Duration, b.Note)
	}
	fmt.Fprintf(w, "\n%d buffs/debuffs at eidolon %d\n", len(buffs), level)
	return nil
}

func init() {
	skillsCmd.Flags().Bool("json", false, "output as JSON")

	buffsCmd.Flags().IntP("eidolon", "e", 0, "eidolon level 0-6")
	buffsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(buffsCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars"},
	Short:   "List, show or delete catalogued characters",
	RunE:    runCharactersList,
}

// --- list subcommand ---

var charactersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List characters, newest version first",
	Args:  cobra.NoArgs,
	RunE:  runCharactersList,
}

func runCharactersList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	chars, err := store.Characters(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(w, chars)
	}
	if len(chars) == 0 {
		fmt.Fprintln(w, "No characters catalogued.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-8s  %-8s  %s\n", "ID", "Name", "Element", "Path", "Version")
	fmt.Fprintln(w, strings.Repeat("-", 56))
	for _, c := range chars {
		fmt.Fprintf(w, "%-4d  %-20s  %-8s  %-8s  %s\n", c.ID, c.Name, c.Element, c.Path, c.Version)
	}
	fmt.Fprintf(w, "\n%d characters\n", len(chars))
	return nil
}

// --- show subcommand ---

var charactersShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a character's details and base stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharactersShow,
}

func runCharactersShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.Character(cmd.Context(), id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(w, c)
	}
	printCharacter(w, c)
	return nil
}

func printCharacter(w io.Writer, c types.Character) {
	fmt.Fprintf(w, "%s (id %d)\n", c.Name, c.ID)
	fmt.Fprintf(w, "  element: %s\n  path:    %s\n", c.Element, c.Path)
	if c.Version != "" {
		fmt.Fprintf(w, "  version: %s\n", c.Version)
	}
	stats := []struct {
		name  string
		value *int
	}{
		{"HP", c.HP}, {"ATK", c.Attack}, {"DEF", c.Defense}, {"SPD", c.Speed}, {"EP", c.EP},
	}
	for _, s := range stats {
		if s.value != nil {
			fmt.Fprintf(w, "  %-7s  %d\n", s.name+":", *s.value)
		}
	}
	for _, b := range c.StatBoosts {
		if b.Type != "" && b.Value != nil {
			fmt.Fprintf(w, "  boost:   %s +%g\n", b.Type, *b.Value)
		}
	}
}

// --- delete subcommand ---

var charactersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a character with its skills, effects and enhancements",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharactersDelete,
}

func runCharactersDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted character %d\n", id)
	return nil
}

// --- shared helpers ---

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	charactersCmd.PersistentFlags().Bool("json", false, "output as JSON")

	charactersCmd.AddCommand(charactersListCmd)
	charactersCmd.AddCommand(charactersShowCmd)
	charactersCmd.AddCommand(charactersDeleteCmd)

	rootCmd.AddCommand(charactersCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/skill-catalog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog as a JSON HTTP API",
	Long: `Serve exposes the catalog over HTTP: character listing and detail,
skills, buffs by eidolon level, CSV upload, stats update and a
description analyzer. It stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(store, loadConfig().Server, logger).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the skill-catalog CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/skill-catalog/internal/catalog"
	"github.com/pdiddy/skill-catalog/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var envKeyReplacer = strings.NewReplacer(".", "_")

// logger is built from configuration before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the skill-catalog CLI.
var rootCmd = &cobra.Command{
	Use:   "skill-catalog",
	Short: "Catalogue character skills and the buffs they grant",
	Long: `skill-catalog reads character CSV files, derives structured buff and
debuff records from skill descriptions, and keeps them in a local SQLite
catalog.

Upload character files with upload, inspect them with characters, skills
and buffs, and serve the catalog as a JSON API with serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(loadConfig().Log)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./skill-catalog.yaml or ~/.config/skill-catalog/skill-catalog.yaml)")
	rootCmd.PersistentFlags().String("db", "", "catalog database file (default data/catalog.db)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "human-readable debug logging")

	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("log.development", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("database.path", "data/catalog.db")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.conn_max_idle_time", 30*time.Second)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.max_upload_bytes", 1<<20)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("log.level", "info")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("skill-catalog")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "skill-catalog"))
		}
	}

	viper.SetEnvPrefix("SKILL_CATALOG")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the merged flag, environment, file and default values.
// A malformed value falls back to the defaults with a warning.
func loadConfig() types.Config {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: reading configuration: %v\n", err)
	}
	return cfg
}

func newLogger(cfg types.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

// openStore opens the catalog database named by the configuration.
func openStore() (*catalog.Store, error) {
	cfg := loadConfig().Database
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened catalog", zap.String("path", cfg.Path))
	return store, nil
}

// parseID parses a character id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid character id %q", arg)
	}
	return id, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

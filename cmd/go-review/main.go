// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-review resolves station identifiers against drawing sets and
// applies recorded markup sessions to a review file.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-review/internal/logging"
	"github.com/petar-djukic/go-review/pkg/review"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "go-review",
		Short:         "Drawing review markup and station cross-referencing",
		Long:          "go-review keeps drawing markups and station notes in a review file, and matches station identifiers across review rows, placemarks and drawing pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Directory holding the review file")
	rootCmd.PersistentFlags().String("review", "review.json", "Review file, relative to workdir")
	rootCmd.PersistentFlags().Bool("no-git", false, "Do not commit saved reviews")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL for draft snapshots (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().Duration("snapshot-ttl", 0, "Draft snapshot lifetime (default 24h)")
	rootCmd.PersistentFlags().Float64("min-zoom", 0, "Lower zoom clamp (default 0.5)")
	rootCmd.PersistentFlags().Float64("max-zoom", 0, "Upper zoom clamp (default 3.0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Append logs to this file instead of stderr")

	// Bind flags to viper.
	for _, name := range []string{
		"workdir", "review", "no-git", "redis-url", "snapshot-ttl",
		"min-zoom", "max-zoom", "log-level", "log-file",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Env vars: GO_REVIEW_WORKDIR, GO_REVIEW_REDIS_URL, etc.
	viper.SetEnvPrefix("GO_REVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".go-review")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newXrefCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newNotesCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the command logger from the log flags.
func newLogger() (*logging.Logger, error) {
	return logging.New().
		ToWriter(os.Stderr).
		ToFile(viper.GetString("log-file")).
		Level(viper.GetString("log-level")).
		Console(viper.GetString("log-file") == "").
		Make()
}

// sessionConfig assembles the review config from flags, env and file.
func sessionConfig(log *logging.Logger) review.Config {
	return review.Config{
		WorkDir:     viper.GetString("workdir"),
		Review:      viper.GetString("review"),
		NoGit:       viper.GetBool("no-git"),
		RedisURL:    viper.GetString("redis-url"),
		SnapshotTTL: viper.GetDuration("snapshot-ttl"),
		MinZoom:     viper.GetFloat64("min-zoom"),
		MaxZoom:     viper.GetFloat64("max-zoom"),
		Logger:      &log.Logger,
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-review version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go-review %s\n", version)
		},
	}
}

// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the fileprocessor command. It loads inbound data files
// into a datastore, or forwards them to a pipeline, when they land in a
// bucket.
//
// Subcommands:
//   - serve: listen on the configured Pub/Sub subscriptions and the HTTP
//     event endpoint until interrupted.
//   - run: process one object named on the command line.
//   - parse: print the job context derived from an object key.
//
// The process exits with a code from internal/exitcode so a scheduler can
// decide whether to retry.
package main

import (
	"fmt"
	"log/slog"
	"os"

	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-file-processor/internal/exitcode"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "fileprocessor",
	Short: "Inbound data file processor",
	Long: `fileprocessor validates inbound data files named
<ts>-<type>-<ptype>-<psub>-<src>-<schema>-<env>-<ver>-<table>-<partition>.<ext>
and either loads their pipe-delimited records into a datastore or forwards
them to a downstream pipeline, then deletes them and sends a notification.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory holding .env.toml and .env.<runtime>.toml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fileprocessor failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.For(err))
	}
}

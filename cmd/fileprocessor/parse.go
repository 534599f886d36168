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

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// parseOutput is what the parse command prints.
type parseOutput struct {
	*model.JobContext
	PipelineName   string `json:"pipeline_name"`
	StoreTableName string `json:"store_table_name"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <key>",
	Short: "Print the job context derived from an object key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := SetupOS(configDir); err != nil {
			return fmt.Errorf("%w: %w", cloud.ErrInvalidConfig, err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			return fmt.Errorf("%w: %w", cloud.ErrInvalidConfig, err)
		}

		prefix := config.Inbound.Prefix
		if cmd.Flags().Changed("prefix") {
			prefix, _ = cmd.Flags().GetString("prefix")
		}

		job, err := model.ParseJobContext(args[0], prefix)
		if err != nil {
			return fmt.Errorf("expected filename format %s: %w", model.ExpectedFilenameFormat, err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(parseOutput{
			JobContext:     job,
			PipelineName:   job.PipelineName(config.Pipeline.NamePrefix),
			StoreTableName: job.StoreTableName(),
		})
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().String("prefix", "", "inbound prefix to strip (default: inbound.prefix)")
}

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
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one object",
	Example: `  fileprocessor run --key inbound/data/2021_12_21_120000-data-normal-full-crm-sales-prod-v1-customers-p1.csv
  fileprocessor run --bucket landing --key inbound/data/... --region us-east-1`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		bucket, _ := cmd.Flags().GetString("bucket")
		key, _ := cmd.Flags().GetString("key")
		region, _ := cmd.Flags().GetString("region")

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		state, err := InitState(ctx, configDir)
		if err != nil {
			return err
		}
		defer state.Close(context.Background())

		if bucket == "" {
			bucket = state.config.Inbound.Bucket
		}
		if bucket == "" {
			return fmt.Errorf("--bucket is required when inbound.bucket is not configured")
		}

		evt := model.NewFileEvent(bucket, key, region, state.config.Location())
		message, err := state.processor.ProcessEvent(ctx, evt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("bucket", "", "bucket holding the object (default: inbound.bucket)")
	runCmd.Flags().String("key", "", "object key, including the inbound prefix")
	runCmd.Flags().String("region", "", "region reported for the object")
	_ = runCmd.MarkFlagRequired("key")
}

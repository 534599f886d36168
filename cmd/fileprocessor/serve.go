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
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-file-processor/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Process files as their events arrive",
	Long: `serve receives storage events from every configured Pub/Sub
subscription and from POST /api/v1/events, and processes one file per event
until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		state, err := InitState(ctx, configDir)
		if err != nil {
			return err
		}
		defer state.Close(context.Background())

		stopped := SetupListeners(ctx, state.cloud.PubSubListeners, state.processor)
		for _, ch := range stopped {
			go func(ch <-chan error) {
				if err := <-ch; err != nil {
					slog.Error("listener stopped", "error", err)
				}
			}(ch)
		}

		srv := &http.Server{
			Addr:         state.config.Application.ListenAddress,
			Handler:      api.NewRouter(state.config.Application.Name, state.processor),
			ReadTimeout:  20 * time.Second,
			WriteTimeout: 5 * time.Minute,
		}
		serveErr := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()
		slog.Info("server ready", "address", srv.Addr, "listeners", len(stopped))

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				return err
			}
		}

		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

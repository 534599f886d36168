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
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/workflow"
	"github.com/jaycherian/gcp-go-file-processor/internal/telemetry"
)

// StateManager holds what every subcommand shares once the process is
// initialized.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	processor *workflow.FileProcessorWorkflow
	shutdown  []func(context.Context) error
}

// SetupOS loads a .env file when present and points the configuration
// loader at configDir unless GCP_CONFIG_PREFIX is already set.
func SetupOS(configDir string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, configDir); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig loads and validates the configuration.
func GetConfig(configDir string) (*cloud.Config, error) {
	if err := SetupOS(configDir); err != nil {
		return nil, fmt.Errorf("%w: %w", cloud.ErrInvalidConfig, err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", cloud.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// InitState sets up logging and telemetry, opens the service clients and
// builds the workflow. Close must be called when InitState succeeds.
func InitState(ctx context.Context, configDir string) (_ *StateManager, err error) {
	config, err := GetConfig(configDir)
	if err != nil {
		return nil, err
	}

	state := &StateManager{config: config}
	defer func() {
		if err != nil {
			state.Close(ctx)
		}
	}()

	closeLog, err := telemetry.SetupLogging(config.Application.LogLevel, config.Application.LogFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cloud.ErrInvalidConfig, err)
	}
	state.shutdown = append(state.shutdown, func(context.Context) error { return closeLog() })

	otelShutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup OpenTelemetry: %w", err)
	}
	state.shutdown = append(state.shutdown, otelShutdown)

	state.cloud, err = cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, err
	}
	state.shutdown = append(state.shutdown, func(context.Context) error { return state.cloud.Close() })

	state.processor, err = workflow.NewFileProcessorFromClients(config, state.cloud)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cloud.ErrInvalidConfig, err)
	}
	state.shutdown = append(state.shutdown, func(context.Context) error {
		state.processor.Close()
		return nil
	})
	slog.Info("initialized state", "application", config.Application.Name)
	return state, nil
}

// Close releases resources in the reverse order they were acquired.
func (s *StateManager) Close(ctx context.Context) {
	for i := len(s.shutdown) - 1; i >= 0; i-- {
		if err := s.shutdown[i](ctx); err != nil {
			slog.Warn("shutdown step failed", "error", err)
		}
	}
	s.shutdown = nil
}

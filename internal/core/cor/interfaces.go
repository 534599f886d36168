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

// Package cor (Chain of Responsibility) provides the building blocks the file
// processor is assembled from. A job is a Chain of Commands that share one
// Context: each command reads what earlier commands produced, does one step of
// work and either writes its result back or records an error that stops the
// chain.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys a BaseChain uses to pipe the output of one
// command into the input of the next.
const (
	// CtxIn holds the primary input of the running command.
	CtxIn = "__IN__"
	// CtxOut is where a command places its primary output.
	CtxOut = "__OUT__"
)

// Context is the shared state of one job execution.
type Context interface {
	// SetContext sets the Go context used for cancellation and trace propagation.
	SetContext(ctx context.Context)

	// GetContext returns the current Go context.
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value any) Context

	// Get returns the value stored under key, or nil.
	Get(key string) any

	// Remove deletes key.
	Remove(key string)

	// AddError records err against the command named key.
	AddError(key string, err error)

	// GetErrors returns the recorded errors keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// Err joins the recorded errors in the order they were added. It is nil
	// when no error was recorded.
	Err() error
}

// Executable is anything with a unit of work to run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one step of a job.
type Command interface {
	Executable

	// GetName returns the unique name used for spans, metrics and error keys.
	GetName() string

	// GetDescription returns the human readable step description written to
	// the log when the step starts.
	GetDescription() string

	// GetInputParam returns the context key of the primary input.
	GetInputParam() string

	// GetOutputParam returns the context key of the primary output.
	GetOutputParam() string

	// IsExecutable reports whether the Context holds what the command needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain runs commands in order. A Chain is itself a Command so chains nest.
type Chain interface {
	Command

	// ContinueOnFailure makes the chain keep running after a command records
	// an error. The default is to stop at the first failure.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}

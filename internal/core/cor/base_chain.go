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

// Package cor provides the chain of responsibility used to run jobs. This
// file defines BaseChain, which runs its commands in order against one shared
// Context.
//
// Logic Flow:
//
//  1. The chain opens a span for itself.
//  2. For each command, in order:
//     - If an earlier command recorded an error and the chain is not set to
//     continue on failure, the remaining commands are skipped.
//     - If the command is not executable with the current context, the chain
//     records ErrNotExecutable against it.
//     - Otherwise the step description is logged, the command runs inside a
//     child span and the Go context is restored afterwards.
//     - The value in CtxOut is moved to CtxIn for the next command.
//  3. The chain span is closed with the final status.
package cor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNotExecutable is recorded when a command's preconditions are not met.
var ErrNotExecutable = errors.New("command not executable")

// BaseChain is the default Chain.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates an empty chain named name.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// Commands returns the commands in execution order.
func (c *BaseChain) Commands() []Command {
	return c.commands
}

// IsExecutable only needs a Go context; each command checks its own input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()

	for _, command := range c.commands {
		if chCtx.HasErrors() && !c.continueOnFailure {
			slog.DebugContext(outerCtx, "skipping step after earlier failure", "chain", c.GetName(), "command", command.GetName())
			break
		}

		commandCtx, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		hadErrors := len(chCtx.GetErrors())

		if command.IsExecutable(chCtx) {
			slog.InfoContext(commandCtx, command.GetDescription(), "command", command.GetName())
			started := time.Now()

			chCtx.SetContext(commandCtx)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)

			commandSpan.SetAttributes(attribute.Int64("duration_ms", time.Since(started).Milliseconds()))
		} else {
			chCtx.AddError(command.GetName(), fmt.Errorf("%w: %s", ErrNotExecutable, command.GetName()))
		}

		if len(chCtx.GetErrors()) > hadErrors {
			commandSpan.SetStatus(codes.Error, "command failed")
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed")
		}
		commandSpan.End()

		out := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if out != nil {
			chCtx.Add(CtxIn, out)
		}
		chCtx.Remove(CtxOut)
	}

	if chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Error, "chain failed")
		return
	}
	chainSpan.SetStatus(codes.Ok, "chain completed")
}

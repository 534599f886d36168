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

package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCommand appends its name to a shared log and optionally fails.
type recordingCommand struct {
	cor.BaseCommand
	log  *[]string
	fail error
}

func newRecordingCommand(name string, log *[]string, fail error) *recordingCommand {
	return &recordingCommand{BaseCommand: *cor.NewBaseCommand(name), log: log, fail: fail}
}

func (c *recordingCommand) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil
}

func (c *recordingCommand) Execute(context cor.Context) {
	*c.log = append(*c.log, c.GetName())
	if in := context.Get(cor.CtxIn); in != nil {
		context.Add(cor.CtxOut, in.(int)+1)
	}
	if c.fail != nil {
		context.AddError(c.GetName(), c.fail)
	}
}

func newContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

func TestBaseChain_RunsInOrderAndPipes(t *testing.T) {
	var log []string
	chain := cor.NewBaseChain("test")
	chain.AddCommand(newRecordingCommand("a", &log, nil))
	chain.AddCommand(newRecordingCommand("b", &log, nil))
	chain.AddCommand(newRecordingCommand("c", &log, nil))

	ctx := newContext()
	ctx.Add(cor.CtxIn, 0)
	chain.Execute(ctx)

	assert.Equal(t, []string{"a", "b", "c"}, log)
	assert.Equal(t, 3, ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
	assert.NoError(t, ctx.Err())
}

func TestBaseChain_StopsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var log []string
	chain := cor.NewBaseChain("test")
	chain.AddCommand(newRecordingCommand("a", &log, nil))
	chain.AddCommand(newRecordingCommand("b", &log, boom))
	chain.AddCommand(newRecordingCommand("c", &log, nil))

	ctx := newContext()
	chain.Execute(ctx)

	assert.Equal(t, []string{"a", "b"}, log)
	assert.ErrorIs(t, ctx.Err(), boom)
	assert.Contains(t, ctx.GetErrors(), "b")
}

func TestBaseChain_ContinueOnFailure(t *testing.T) {
	var log []string
	chain := cor.NewBaseChain("test").ContinueOnFailure(true)
	chain.AddCommand(newRecordingCommand("a", &log, errors.New("first")))
	chain.AddCommand(newRecordingCommand("b", &log, errors.New("second")))

	ctx := newContext()
	chain.Execute(ctx)

	assert.Equal(t, []string{"a", "b"}, log)
	require.Error(t, ctx.Err())
	assert.Equal(t, "first\nsecond", ctx.Err().Error())
}

func TestBaseChain_NotExecutable(t *testing.T) {
	// BaseCommand requires an input value, which the context lacks.
	cmd := cor.NewBaseCommand("needs-input")
	assert.False(t, cmd.IsExecutable(newContext()))

	var log []string
	strict := cor.NewBaseChain("strict")
	strict.AddCommand(&inputCommand{BaseCommand: *cor.NewBaseCommand("needs-input")})
	strict.AddCommand(newRecordingCommand("after", &log, nil))

	ctx := newContext()
	strict.Execute(ctx)

	assert.ErrorIs(t, ctx.Err(), cor.ErrNotExecutable)
	assert.Empty(t, log)
}

// inputCommand relies on the default IsExecutable.
type inputCommand struct {
	cor.BaseCommand
}

func (c *inputCommand) Execute(context cor.Context) {}

func TestBaseCommand_Defaults(t *testing.T) {
	cmd := cor.NewBaseCommand("reader")
	assert.Equal(t, cor.CtxIn, cmd.GetInputParam())
	assert.Equal(t, cor.CtxOut, cmd.GetOutputParam())
	assert.Equal(t, "reader", cmd.GetDescription())

	cmd.WithDescription("File Processor - Reading file")
	cmd.InputParamName = "in"
	assert.Equal(t, "in", cmd.GetInputParam())
	assert.Equal(t, "File Processor - Reading file", cmd.GetDescription())
	assert.NotNil(t, cmd.GetTracer())
	assert.NotNil(t, cmd.GetSuccessCounter())
}

func TestBaseContext_Errors(t *testing.T) {
	ctx := cor.NewBaseContext()
	assert.False(t, ctx.HasErrors())
	assert.NoError(t, ctx.Err())

	ctx.AddError("x", nil)
	assert.False(t, ctx.HasErrors())

	ctx.AddError("x", errors.New("one"))
	ctx.AddError("y", errors.New("two"))
	ctx.AddError("x", errors.New("three"))

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, "three\ntwo", ctx.Err().Error())
	assert.Len(t, ctx.GetErrors(), 2)
}

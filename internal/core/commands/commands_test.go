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

package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/commands"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bucket = "landing"

func newContext(t *testing.T) cor.Context {
	t.Helper()
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

func withEvent(t *testing.T, key string) cor.Context {
	ctx := newContext(t)
	ctx.Add(commands.ParamFileEvent, model.NewFileEvent(bucket, key, "", time.UTC))
	return ctx
}

func stepError(t *testing.T, ctx cor.Context, command string) *model.StepError {
	t.Helper()
	err, ok := ctx.GetErrors()[command]
	require.True(t, ok, "no error recorded for %s", command)
	var stepErr *model.StepError
	require.True(t, errors.As(err, &stepErr))
	return stepErr
}

func TestEventTriggerReader_DecodesPayload(t *testing.T) {
	cmd := commands.NewEventTriggerReader("reader", time.UTC)
	ctx := newContext(t)
	ctx.Add(cor.CtxIn, testutil.GCSNotification(bucket, testutil.ExampleKey))

	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())

	evt, ok := ctx.Get(commands.ParamFileEvent).(*model.FileEvent)
	require.True(t, ok)
	assert.Equal(t, bucket, evt.Bucket)
	assert.Equal(t, testutil.ExampleKey, evt.Key)
	assert.NotEmpty(t, evt.RunID)
	assert.Same(t, evt, ctx.Get(cor.CtxOut))
}

func TestEventTriggerReader_AcceptsStringPayload(t *testing.T) {
	cmd := commands.NewEventTriggerReader("reader", time.UTC)
	ctx := newContext(t)
	ctx.Add(cor.CtxIn, string(testutil.S3Event(bucket, "inbound%2Fdata%2Fx.csv", "us-east-1")))

	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())
	evt := ctx.Get(commands.ParamFileEvent).(*model.FileEvent)
	assert.Equal(t, "inbound/data/x.csv", evt.Key)
	assert.Equal(t, "us-east-1", evt.Region)
}

func TestEventTriggerReader_PassesThroughKnownEvent(t *testing.T) {
	cmd := commands.NewEventTriggerReader("reader", time.UTC)
	ctx := withEvent(t, testutil.ExampleKey)
	evt := ctx.Get(commands.ParamFileEvent)

	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())
	assert.Same(t, evt, ctx.Get(cor.CtxOut))
}

func TestEventTriggerReader_RejectsGarbage(t *testing.T) {
	cmd := commands.NewEventTriggerReader("reader", time.UTC)
	ctx := newContext(t)
	ctx.Add(cor.CtxIn, []byte(`{"hello":"world"}`))

	cmd.Execute(ctx)
	stepErr := stepError(t, ctx, "reader")
	assert.Equal(t, commands.StepEventFailed, stepErr.Step)
	assert.Nil(t, ctx.Get(commands.ParamFileEvent))
}

func TestObjectSizeCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "nine bytes is rejected", content: "123456789", wantErr: true},
		{name: "ten bytes proceeds", content: "1234567890"},
		{name: "empty is rejected", content: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMemoryStore()
			store.Put(bucket, testutil.ExampleKey, []byte(tt.content))
			cmd := commands.NewObjectSizeCheck("size", store, 10)
			ctx := withEvent(t, testutil.ExampleKey)

			require.True(t, cmd.IsExecutable(ctx))
			cmd.Execute(ctx)

			if tt.wantErr {
				stepErr := stepError(t, ctx, "size")
				assert.Equal(t, commands.StepFileEmpty, stepErr.Step)
				assert.ErrorIs(t, ctx.Err(), model.ErrFileTooSmall)
				assert.Nil(t, ctx.Get(commands.ParamFileObject))
				return
			}
			require.NoError(t, ctx.Err())
			obj := ctx.Get(commands.ParamFileObject).(*model.FileObject)
			assert.Equal(t, int64(len(tt.content)), obj.Size)
		})
	}
}

func TestObjectSizeCheck_MissingObject(t *testing.T) {
	cmd := commands.NewObjectSizeCheck("size", testutil.NewMemoryStore(), 10)
	ctx := withEvent(t, testutil.ExampleKey)

	cmd.Execute(ctx)
	assert.ErrorIs(t, ctx.Err(), model.ErrObjectFetchFailed)
	assert.ErrorIs(t, ctx.Err(), model.ErrObjectNotFound)
}

func TestObjectSizeCheck_NotExecutableWithoutEvent(t *testing.T) {
	cmd := commands.NewObjectSizeCheck("size", testutil.NewMemoryStore(), 10)
	assert.False(t, cmd.IsExecutable(newContext(t)))
}

func TestFilenameParser(t *testing.T) {
	cmd := commands.NewFilenameParser("parser", testutil.ExamplePrefix)
	ctx := withEvent(t, testutil.ExampleKey)

	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())
	job := ctx.Get(commands.ParamJobContext).(*model.JobContext)
	assert.Equal(t, testutil.ExampleTableID, job.TableID)
	assert.Same(t, job, ctx.Get(cor.CtxOut))
}

func TestFilenameParser_Failure(t *testing.T) {
	cmd := commands.NewFilenameParser("parser", testutil.ExamplePrefix)
	ctx := withEvent(t, testutil.ExamplePrefix+"2021_12_21-data-normal.csv")

	cmd.Execute(ctx)
	stepErr := stepError(t, ctx, "parser")
	assert.Equal(t, commands.StepParseFailed, stepErr.Step)
	assert.Contains(t, stepErr.Details, model.ExpectedFilenameFormat)
	assert.ErrorIs(t, ctx.Err(), model.ErrTokenCountMismatch)
	assert.Nil(t, ctx.Get(commands.ParamJobContext))
}

func parsedContext(t *testing.T) cor.Context {
	ctx := withEvent(t, testutil.ExampleKey)
	job, err := model.ParseJobContext(testutil.ExampleKey, testutil.ExamplePrefix)
	require.NoError(t, err)
	ctx.Add(commands.ParamJobContext, job)
	return ctx
}

func TestObjectReader(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Put(bucket, testutil.ExampleKey, []byte(testutil.ExampleRecords))
	cmd := commands.NewObjectReader("read", store)
	ctx := parsedContext(t)

	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())
	obj := ctx.Get(commands.ParamFileObject).(*model.FileObject)
	assert.Equal(t, testutil.ExampleRecords, string(obj.Payload))
	assert.Equal(t, int64(len(testutil.ExampleRecords)), obj.Size)
}

func TestObjectReader_Failure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.ReadErr = model.ErrAccessDenied
	cmd := commands.NewObjectReader("read", store)
	ctx := parsedContext(t)

	cmd.Execute(ctx)
	assert.Equal(t, commands.StepReadFailed, stepError(t, ctx, "read").Step)
	assert.ErrorIs(t, ctx.Err(), model.ErrObjectFetchFailed)
	assert.ErrorIs(t, ctx.Err(), model.ErrAccessDenied)
}

func loadedContext(t *testing.T) cor.Context {
	ctx := parsedContext(t)
	ctx.Add(commands.ParamFileObject, &model.FileObject{Payload: []byte(testutil.ExampleRecords)})
	return ctx
}

func TestSinkLoad(t *testing.T) {
	sink := &testutil.RecordingSink{}
	cmd := commands.NewSinkLoad("load", sink)
	ctx := loadedContext(t)

	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())
	require.Len(t, sink.Payloads, 1)
	assert.Equal(t, "loaded into Memory", ctx.Get(commands.ParamSinkAction))
}

func TestSinkLoad_Failure(t *testing.T) {
	sink := &testutil.RecordingSink{Err: model.ErrTableNotFound}
	cmd := commands.NewSinkLoad("load", sink)
	ctx := loadedContext(t)

	cmd.Execute(ctx)
	assert.Equal(t, commands.StepLoadFailed, stepError(t, ctx, "load").Step)
	assert.ErrorIs(t, ctx.Err(), model.ErrTableNotFound)
	assert.Nil(t, ctx.Get(commands.ParamSinkAction))
}

func TestObjectCleanup_RequiresLoad(t *testing.T) {
	store := testutil.NewMemoryStore()
	cmd := commands.NewObjectCleanup("cleanup", store)
	ctx := loadedContext(t)

	assert.False(t, cmd.IsExecutable(ctx))
	ctx.Add(commands.ParamSinkAction, "loaded into Memory")
	assert.True(t, cmd.IsExecutable(ctx))
}

func TestObjectCleanup(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Put(bucket, testutil.ExampleKey, []byte(testutil.ExampleRecords))
	cmd := commands.NewObjectCleanup("cleanup", store)
	ctx := loadedContext(t)
	ctx.Add(commands.ParamSinkAction, "loaded into Memory")

	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())
	assert.False(t, store.Has(bucket, testutil.ExampleKey))
}

func TestObjectCleanup_Failure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.DeleteErr = model.ErrAccessDenied
	cmd := commands.NewObjectCleanup("cleanup", store)
	ctx := loadedContext(t)
	ctx.Add(commands.ParamSinkAction, "loaded into Memory")

	cmd.Execute(ctx)
	stepErr := stepError(t, ctx, "cleanup")
	assert.Equal(t, commands.StepDeleteFailed, stepErr.Step)
	assert.True(t, strings.Contains(stepErr.Details, bucket))
	assert.ErrorIs(t, ctx.Err(), model.ErrDeleteFailed)
}

func TestNotifyCompletion(t *testing.T) {
	notifier := &testutil.RecordingNotifier{}
	cmd := commands.NewNotifyCompletion("notify", notifier, "file-notifications", "Subject")
	ctx := loadedContext(t)
	ctx.Add(commands.ParamSinkAction, "loaded into DynamoDB")

	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	require.NoError(t, ctx.Err())

	require.Len(t, notifier.Messages, 1)
	msg := notifier.Messages[0]
	assert.Equal(t, "file-notifications", msg.Topic)
	assert.Equal(t, "Subject", msg.Subject)
	assert.Equal(t,
		"File for TABLE_ID - CRM_SALES_CUSTOMERS_PROD_v1 was successfully parsed and loaded into DynamoDB and deleted.",
		msg.Message)
	assert.Equal(t, msg.Message, ctx.Get(cor.CtxOut))
}

func TestNotifyCompletion_Failure(t *testing.T) {
	notifier := &testutil.RecordingNotifier{Err: errors.New("unavailable")}
	cmd := commands.NewNotifyCompletion("notify", notifier, "file-notifications", "Subject")
	ctx := loadedContext(t)
	ctx.Add(commands.ParamSinkAction, "loaded into Memory")

	cmd.Execute(ctx)
	assert.Equal(t, commands.StepNotifyFailed, stepError(t, ctx, "notify").Step)
	assert.ErrorIs(t, ctx.Err(), model.ErrNotifyFailed)
}

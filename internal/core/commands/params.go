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

// Package commands implements the steps of a file processing job as
// cor.Commands. Each step reads what it needs from well-known context keys,
// does one thing and either stores its result or records a *model.StepError
// that stops the chain.
package commands

import (
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// Context keys shared between the steps.
const (
	ParamFileEvent  = "__FILE_EVENT__"  // *model.FileEvent
	ParamJobContext = "__JOB_CONTEXT__" // *model.JobContext
	ParamFileObject = "__FILE_OBJECT__" // *model.FileObject
	ParamSinkAction = "__SINK_ACTION__" // string
)

// Step descriptions written to the log when a step starts or fails.
const (
	StepStart        = "File Processor - Start"
	StepSizeCheck    = "File Processor Checks - File size check"
	StepParse        = "File Processor Start - Parameter parsing"
	StepRead         = "File Processor Checks - File parameter checks"
	StepLoad         = "File Processor - Loading file"
	StepDelete       = "File Processor - Deleting file"
	StepNotify       = "File Processor - Sending notification"
	StepFinish       = "File Processor Finish - File parsed, checked and deleted"
	StepEventFailed  = "File Processor Error - Event parsing failed - Aborted"
	StepFileEmpty    = "File Processor Error - File Empty - Aborted"
	StepParseFailed  = "File Processor Error - Parsing failed - Aborted"
	StepReadFailed   = "File Processor Error - File retrieval failed - Aborted"
	StepLoadFailed   = "File Processor Error - Load failed - Aborted"
	StepDeleteFailed = "File Processor Error - File Delete failed - Aborted"
	StepNotifyFailed = "File Processor - Processing failed - Aborted"
)

func fileEvent(context cor.Context) *model.FileEvent {
	evt, _ := context.Get(ParamFileEvent).(*model.FileEvent)
	return evt
}

func jobContext(context cor.Context) *model.JobContext {
	job, _ := context.Get(ParamJobContext).(*model.JobContext)
	return job
}

func fileObject(context cor.Context) *model.FileObject {
	obj, _ := context.Get(ParamFileObject).(*model.FileObject)
	return obj
}

// fail records err against command as a StepError. Logging is left to the
// transport that runs the chain.
func fail(command cor.Command, context cor.Context, step string, details string, err error) {
	stepErr := model.NewStepError(step, details, err)
	command.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(command.GetName(), stepErr)
}

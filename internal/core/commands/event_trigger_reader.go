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

// Package commands implements the job steps. This file defines the first
// step of every job.
//
// Logic Flow:
// A job is triggered either by a Cloud Storage notification delivered through
// Pub/Sub or by an S3-style bucket event delivered over HTTP.
//
//  1. The raw payload is read from the chain input as []byte or string.
//  2. cloud.DecodeFileEvent recognizes the payload shape, URL-decodes S3 keys
//     and stamps the job start time in the configured time zone.
//  3. The resulting *model.FileEvent is stored under ParamFileEvent and as
//     the command output.
//
// A job started by hand already carries its FileEvent; it is passed through.
package commands

import (
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// EventTriggerReader turns a trigger payload into a FileEvent.
type EventTriggerReader struct {
	cor.BaseCommand
	location *time.Location
}

func NewEventTriggerReader(name string, location *time.Location) *EventTriggerReader {
	return &EventTriggerReader{BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepStart), location: location}
}

func (c *EventTriggerReader) IsExecutable(context cor.Context) bool {
	if context == nil || context.GetContext() == nil {
		return false
	}
	return fileEvent(context) != nil || context.Get(c.GetInputParam()) != nil
}

func (c *EventTriggerReader) Execute(context cor.Context) {
	if evt := fileEvent(context); evt != nil {
		c.logEvent(context, evt)
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), evt)
		return
	}

	var payload []byte
	switch in := context.Get(c.GetInputParam()).(type) {
	case []byte:
		payload = in
	case string:
		payload = []byte(in)
	}

	evt, err := cloud.DecodeFileEvent(payload, c.location)
	if err != nil {
		fail(c, context, StepEventFailed, "trigger payload is not a storage event", err)
		return
	}

	c.logEvent(context, evt)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamFileEvent, evt)
	context.Add(c.GetOutputParam(), evt)
}

func (c *EventTriggerReader) logEvent(context cor.Context, evt *model.FileEvent) {
	slog.InfoContext(context.GetContext(), "processing file",
		"run_id", evt.RunID,
		"bucket", evt.Bucket,
		"key", evt.Key,
		"region", evt.Region,
		"start", evt.Start.Format(time.RFC3339))
}

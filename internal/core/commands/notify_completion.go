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

package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/notify"
)

// CompletionMessage is the text published when a file has been processed.
func CompletionMessage(tableID string, action string) string {
	return fmt.Sprintf("File for TABLE_ID - %s was successfully parsed and %s and deleted.", tableID, action)
}

// NotifyCompletion publishes the completion message and logs the end of the
// job with its elapsed time.
type NotifyCompletion struct {
	cor.BaseCommand
	notifier notify.Notifier
	topic    string
	subject  string
}

func NewNotifyCompletion(name string, notifier notify.Notifier, topic string, subject string) *NotifyCompletion {
	return &NotifyCompletion{
		BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepNotify),
		notifier:    notifier,
		topic:       topic,
		subject:     subject,
	}
}

func (c *NotifyCompletion) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		jobContext(context) != nil && context.Get(ParamSinkAction) != nil
}

func (c *NotifyCompletion) Execute(context cor.Context) {
	job := jobContext(context)
	action, _ := context.Get(ParamSinkAction).(string)
	message := CompletionMessage(job.TableID, action)

	if err := c.notifier.Publish(context.GetContext(), c.topic, c.subject, message); err != nil {
		fail(c, context, StepNotifyFailed, "could not publish completion for TABLE_ID - "+job.TableID,
			fmt.Errorf("%w: %w", model.ErrNotifyFailed, err))
		return
	}

	attrs := []any{"table_id", job.TableID, "topic", c.topic, "message", message}
	if evt := fileEvent(context); evt != nil {
		attrs = append(attrs, "run_id", evt.RunID, "elapsed", time.Since(evt.Start).String())
	}
	slog.InfoContext(context.GetContext(), StepFinish, attrs...)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), message)
}

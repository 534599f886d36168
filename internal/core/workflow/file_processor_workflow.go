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

// Package workflow assembles commands into the file processing job. Every
// transport (Pub/Sub listener, HTTP endpoint, command line) runs the same
// FileProcessorWorkflow.
package workflow

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/commands"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/notify"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/objectstore"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/sinks"
)

// FileProcessorWorkflow runs one job per trigger:
//
//  1. decode the trigger into a FileEvent
//  2. reject files below the minimum size
//  3. parse the filename into a JobContext
//  4. read the content
//  5. load it into the sink
//  6. delete the source object
//  7. publish the completion notification
//
// The chain stops at the first failing step, so a file is only deleted after
// a successful load and only announced after a successful delete.
type FileProcessorWorkflow struct {
	cor.BaseCommand
	config   *cloud.Config
	store    objectstore.ObjectStore
	sink     sinks.Sink
	notifier notify.Notifier
	chain    cor.Chain
}

func (w *FileProcessorWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *FileProcessorWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *FileProcessorWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewEventTriggerReader("event-trigger-reader", w.config.Location()))
	out.AddCommand(commands.NewObjectSizeCheck("object-size-check", w.store, w.config.Application.MinFileSizeBytes))
	out.AddCommand(commands.NewFilenameParser("filename-parser", w.config.Inbound.Prefix))
	out.AddCommand(commands.NewObjectReader("object-reader", w.store))
	out.AddCommand(commands.NewSinkLoad("sink-load", w.sink))
	out.AddCommand(commands.NewObjectCleanup("object-cleanup", w.store))
	out.AddCommand(commands.NewNotifyCompletion("notify-completion", w.notifier, w.config.Notification.Topic, w.config.Notification.Subject))
	w.chain = out
}

// Process runs the workflow for a raw trigger payload and returns the
// completion message.
func (w *FileProcessorWorkflow) Process(ctx context.Context, payload []byte) (string, error) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, payload)
	return w.run(chCtx)
}

// ProcessEvent runs the workflow for an object that is already known, as when
// a job is started by hand.
func (w *FileProcessorWorkflow) ProcessEvent(ctx context.Context, evt *model.FileEvent) (string, error) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.ParamFileEvent, evt)
	return w.run(chCtx)
}

// Close stops the notifier's publishers, if it holds any.
func (w *FileProcessorWorkflow) Close() {
	if c, ok := w.notifier.(interface{ Close() }); ok {
		c.Close()
	}
}

func (w *FileProcessorWorkflow) run(chCtx cor.Context) (string, error) {
	w.Execute(chCtx)
	if err := chCtx.Err(); err != nil {
		slog.ErrorContext(chCtx.GetContext(), "file processing failed", "workflow", w.GetName(), "error", err)
		return "", err
	}
	message, _ := chCtx.Get(cor.CtxIn).(string)
	return message, nil
}

// NewFileProcessorWorkflow wires the job to its collaborators. The store,
// sink and notifier are chosen from config by the caller.
func NewFileProcessorWorkflow(
	config *cloud.Config,
	store objectstore.ObjectStore,
	sink sinks.Sink,
	notifier notify.Notifier) *FileProcessorWorkflow {

	w := &FileProcessorWorkflow{
		BaseCommand: *cor.NewBaseCommand("file-processor-workflow"),
		config:      config,
		store:       store,
		sink:        sink,
		notifier:    notifier,
	}
	w.initializeChain()
	return w
}

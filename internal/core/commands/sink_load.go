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
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/sinks"
)

// SinkLoad hands the file content to the configured sink.
type SinkLoad struct {
	cor.BaseCommand
	sink sinks.Sink
}

func NewSinkLoad(name string, sink sinks.Sink) *SinkLoad {
	return &SinkLoad{BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepLoad), sink: sink}
}

func (c *SinkLoad) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		jobContext(context) != nil && fileObject(context) != nil
}

func (c *SinkLoad) Execute(context cor.Context) {
	job := jobContext(context)
	obj := fileObject(context)

	if err := c.sink.Load(context.GetContext(), job, obj.Payload); err != nil {
		fail(c, context, StepLoadFailed, "could not load file for TABLE_ID - "+job.TableID, err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamSinkAction, c.sink.Action(job))
}

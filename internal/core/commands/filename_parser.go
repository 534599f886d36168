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
	"log/slog"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// FilenameParser builds the job context from the object key.
type FilenameParser struct {
	cor.BaseCommand
	prefix string
}

func NewFilenameParser(name string, prefix string) *FilenameParser {
	return &FilenameParser{BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepParse), prefix: prefix}
}

func (c *FilenameParser) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && fileEvent(context) != nil
}

func (c *FilenameParser) Execute(context cor.Context) {
	evt := fileEvent(context)

	job, err := model.ParseJobContext(evt.Key, c.prefix)
	if err != nil {
		fail(c, context, StepParseFailed, "expected filename format "+model.ExpectedFilenameFormat, err)
		return
	}

	slog.InfoContext(context.GetContext(), "processing parameters for TABLE_ID - "+job.TableID,
		"run_id", evt.RunID,
		"table_id", job.TableID,
		"file_type", job.FileType,
		"process_type", job.ProcessType,
		"process_subtype", job.ProcessSubtype,
		"partition", job.PartitionName)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamJobContext, job)
	context.Add(c.GetOutputParam(), job)
}

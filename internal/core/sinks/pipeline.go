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

package sinks

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// AttrPipelineName carries the derived pipeline name on forwarded messages.
const AttrPipelineName = "pipeline_name"

// PipelineSink forwards the raw file to the downstream pipeline topic. The
// job context travels as message attributes.
type PipelineSink struct {
	topic      *pubsub.Topic
	namePrefix string
}

func NewPipelineSink(topic *pubsub.Topic, namePrefix string) *PipelineSink {
	return &PipelineSink{topic: topic, namePrefix: namePrefix}
}

func (s *PipelineSink) Action(job *model.JobContext) string {
	return "forwarded to pipeline " + job.PipelineName(s.namePrefix)
}

func (s *PipelineSink) Load(ctx context.Context, job *model.JobContext, payload []byte) error {
	attrs := job.Attributes()
	attrs[AttrPipelineName] = job.PipelineName(s.namePrefix)

	id, err := s.topic.Publish(ctx, &pubsub.Message{Data: payload, Attributes: attrs}).Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: topic %s: %w", model.ErrForwardFailed, s.topic.ID(), err)
	}
	slog.InfoContext(ctx, "file forwarded to pipeline",
		"table_id", job.TableID,
		"pipeline", attrs[AttrPipelineName],
		"topic", s.topic.ID(),
		"message_id", id)
	return nil
}

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

// Package sinks decides what happens to a file once its name has been parsed.
// The datastore variant (KeyValueSink) parses the records and upserts them
// into a table through a RecordStore. The pipeline variant (PipelineSink)
// forwards the raw file to a downstream pipeline stage.
package sinks

import (
	"context"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// Sink consumes the content of one parsed file.
type Sink interface {
	// Load hands payload to the sink. job describes the file.
	Load(ctx context.Context, job *model.JobContext, payload []byte) error
	// Action describes what Load did, for the completion message, e.g.
	// "loaded into BigQuery".
	Action(job *model.JobContext) string
}

// RecordStore is a batch key-value writer keyed by customer_id.
type RecordStore interface {
	// Name is the product name used in log lines and completion messages.
	Name() string
	// TableExists reports whether table can receive records.
	TableExists(ctx context.Context, table string) (bool, error)
	// Upsert writes records into table, overwriting records with the same key.
	Upsert(ctx context.Context, table string, records []model.CustomerRecord) error
}

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
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// KeyValueSink parses pipe-delimited customer records and upserts them into
// the table named by the job, in batches of batchSize.
type KeyValueSink struct {
	store     RecordStore
	batchSize int
	writer    *cloud.QuotaAwareWriter
}

// NewKeyValueSink creates the datastore sink. A nil writer disables throttling.
func NewKeyValueSink(store RecordStore, batchSize int, writer *cloud.QuotaAwareWriter) *KeyValueSink {
	if batchSize < 1 {
		batchSize = cloud.DefaultBatchSize
	}
	if writer == nil {
		writer = cloud.NewQuotaAwareWriter(0, 1)
	}
	return &KeyValueSink{store: store, batchSize: batchSize, writer: writer}
}

func (s *KeyValueSink) Action(_ *model.JobContext) string {
	return "loaded into " + s.store.Name()
}

// Load checks the payload is text, parses it, checks the table exists and
// writes the records. Any failure aborts the whole file; batches written
// before the failure stay written.
func (s *KeyValueSink) Load(ctx context.Context, job *model.JobContext, payload []byte) error {
	if kind, _ := filetype.Match(payload); kind != filetype.Unknown {
		return fmt.Errorf("%w: payload is %s, expected delimited text", model.ErrBatchWriteFailed, kind.MIME.Value)
	}
	if !utf8.Valid(payload) {
		return fmt.Errorf("%w: payload is not valid UTF-8", model.ErrBatchWriteFailed)
	}

	batch, err := model.ParseCustomerRecords(string(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrBatchWriteFailed, err)
	}
	for _, line := range batch.Skipped {
		slog.InfoContext(ctx, "skipping empty row", "table_id", job.TableID, "line", line)
	}

	table := job.StoreTableName()
	exists, err := s.store.TableExists(ctx, table)
	if err != nil {
		return fmt.Errorf("%w: %s table %s: %w", model.ErrTableNotFound, s.store.Name(), table, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s table %s", model.ErrTableNotFound, s.store.Name(), table)
	}

	records := model.LastWriteWins(batch.Records)
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		chunk := records[start:end]
		err := s.writer.Do(ctx, func(ctx context.Context) error {
			return s.store.Upsert(ctx, table, chunk)
		})
		if err != nil {
			return fmt.Errorf("%w: %s table %s records %d-%d: %w", model.ErrBatchWriteFailed, s.store.Name(), table, start+1, end, err)
		}
	}

	slog.InfoContext(ctx, "records loaded",
		"table_id", job.TableID,
		"table", table,
		"store", s.store.Name(),
		"rows", len(batch.Records),
		"written", len(records),
		"skipped", len(batch.Skipped))
	return nil
}

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

package sinks_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/sinks"
	"github.com/jaycherian/gcp-go-file-processor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore records upserts in memory.
type stubStore struct {
	tables    map[string]bool
	existsErr error
	failOn    int // 1-based upsert call that fails, 0 never
	calls     [][]model.CustomerRecord
	rows      map[int64]model.CustomerRecord
}

func newStubStore(tables ...string) *stubStore {
	s := &stubStore{tables: map[string]bool{}, rows: map[int64]model.CustomerRecord{}}
	for _, t := range tables {
		s.tables[t] = true
	}
	return s
}

func (s *stubStore) Name() string { return "Stub" }

func (s *stubStore) TableExists(_ context.Context, table string) (bool, error) {
	return s.tables[table], s.existsErr
}

func (s *stubStore) Upsert(_ context.Context, _ string, records []model.CustomerRecord) error {
	s.calls = append(s.calls, records)
	if len(s.calls) == s.failOn {
		return errors.New("write quota exceeded")
	}
	for _, r := range records {
		s.rows[r.CustomerID] = r
	}
	return nil
}

func exampleJob(t *testing.T) *model.JobContext {
	t.Helper()
	job, err := model.ParseJobContext(testutil.ExampleKey, testutil.ExamplePrefix)
	require.NoError(t, err)
	return job
}

func TestKeyValueSink_Load(t *testing.T) {
	store := newStubStore("customers")
	sink := sinks.NewKeyValueSink(store, 25, nil)

	require.NoError(t, sink.Load(context.Background(), exampleJob(t), []byte(testutil.ExampleRecords)))

	require.Len(t, store.calls, 1)
	assert.Len(t, store.rows, 2)
	assert.Equal(t, "Ada King", store.rows[1].CustomerName, "last row for a key wins")
	assert.Equal(t, "loaded into Stub", sink.Action(nil))
}

func TestKeyValueSink_Batches(t *testing.T) {
	var rows []string
	for i := 1; i <= 60; i++ {
		rows = append(rows, fmt.Sprintf("%d|d|n|s|c|st|z", i))
	}
	store := newStubStore("customers")
	sink := sinks.NewKeyValueSink(store, 25, nil)

	require.NoError(t, sink.Load(context.Background(), exampleJob(t), []byte(strings.Join(rows, "\n"))))
	require.Len(t, store.calls, 3)
	assert.Len(t, store.calls[0], 25)
	assert.Len(t, store.calls[2], 10)
	assert.Len(t, store.rows, 60)
}

func TestKeyValueSink_EmptyRowsSkipped(t *testing.T) {
	store := newStubStore("customers")
	sink := sinks.NewKeyValueSink(store, 25, nil)

	require.NoError(t, sink.Load(context.Background(), exampleJob(t), []byte("\n\n7|d|n|s|c|st|z\n\n")))
	assert.Len(t, store.rows, 1)
}

func TestKeyValueSink_TypeErrorFailsBatch(t *testing.T) {
	store := newStubStore("customers")
	sink := sinks.NewKeyValueSink(store, 25, nil)

	err := sink.Load(context.Background(), exampleJob(t), []byte("1|d|n|s|c|st|z\nX12|d|n|s|c|st|z"))
	assert.ErrorIs(t, err, model.ErrBatchWriteFailed)
	assert.Empty(t, store.calls, "nothing is written when a row is malformed")
}

func TestKeyValueSink_ShortRowFailsBatch(t *testing.T) {
	sink := sinks.NewKeyValueSink(newStubStore("customers"), 25, nil)
	err := sink.Load(context.Background(), exampleJob(t), []byte("1|d|n"))
	assert.ErrorIs(t, err, model.ErrBatchWriteFailed)
}

func TestKeyValueSink_RejectsBinary(t *testing.T) {
	sink := sinks.NewKeyValueSink(newStubStore("customers"), 25, nil)

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	err := sink.Load(context.Background(), exampleJob(t), png)
	assert.ErrorIs(t, err, model.ErrBatchWriteFailed)
	assert.Contains(t, err.Error(), "image/png")

	err = sink.Load(context.Background(), exampleJob(t), []byte{'1', '|', 0xff, 0xfe})
	assert.ErrorIs(t, err, model.ErrBatchWriteFailed)
}

func TestKeyValueSink_TableNotFound(t *testing.T) {
	store := newStubStore("orders")
	sink := sinks.NewKeyValueSink(store, 25, nil)

	err := sink.Load(context.Background(), exampleJob(t), []byte(testutil.ExampleRecords))
	assert.ErrorIs(t, err, model.ErrTableNotFound)
	assert.Contains(t, err.Error(), "customers")
	assert.Empty(t, store.calls)

	store.existsErr = errors.New("permission denied")
	err = sink.Load(context.Background(), exampleJob(t), []byte(testutil.ExampleRecords))
	assert.ErrorIs(t, err, model.ErrTableNotFound)
}

func TestKeyValueSink_WriteFailure(t *testing.T) {
	var rows []string
	for i := 1; i <= 30; i++ {
		rows = append(rows, fmt.Sprintf("%d|d|n|s|c|st|z", i))
	}
	store := newStubStore("customers")
	store.failOn = 2
	sink := sinks.NewKeyValueSink(store, 25, nil)

	err := sink.Load(context.Background(), exampleJob(t), []byte(strings.Join(rows, "\n")))
	assert.ErrorIs(t, err, model.ErrBatchWriteFailed)
	assert.Contains(t, err.Error(), "records 26-30")
	assert.Len(t, store.rows, 25, "the first batch stays written")
}

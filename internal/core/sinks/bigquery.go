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
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"google.golang.org/api/googleapi"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdentifier reports whether name can be used as a table name without
// quoting concerns.
func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// BigQueryStore upserts records into tables of one dataset with a MERGE
// statement per batch.
type BigQueryStore struct {
	client  *bigquery.Client
	dataset string
}

func NewBigQueryStore(client *bigquery.Client, dataset string) *BigQueryStore {
	return &BigQueryStore{client: client, dataset: dataset}
}

func (s *BigQueryStore) Name() string {
	return "BigQuery"
}

func (s *BigQueryStore) TableExists(ctx context.Context, table string) (bool, error) {
	if !validIdentifier(table) {
		return false, nil
	}
	_, err := s.client.Dataset(s.dataset).Table(table).Metadata(ctx)
	if err == nil {
		return true, nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// mergeSQL builds the MERGE statement that upserts the @rows array parameter
// into table, keyed by customer_id.
func mergeSQL(project string, dataset string, table string) string {
	cols := model.CustomerColumns
	sets := make([]string, 0, len(cols)-1)
	values := make([]string, 0, len(cols))
	for _, col := range cols {
		values = append(values, "S."+col)
		if col != model.CustomerPrimaryKey {
			sets = append(sets, fmt.Sprintf("%s = S.%s", col, col))
		}
	}
	return fmt.Sprintf("MERGE `%s.%s.%s` T\n"+
		"USING UNNEST(@rows) S\n"+
		"ON T.%s = S.%s\n"+
		"WHEN MATCHED THEN UPDATE SET %s\n"+
		"WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		project, dataset, table,
		model.CustomerPrimaryKey, model.CustomerPrimaryKey,
		strings.Join(sets, ", "),
		strings.Join(cols, ", "), strings.Join(values, ", "))
}

func (s *BigQueryStore) Upsert(ctx context.Context, table string, records []model.CustomerRecord) error {
	if !validIdentifier(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	q := s.client.Query(mergeSQL(s.client.Project(), s.dataset, table))
	q.Parameters = []bigquery.QueryParameter{{Name: "rows", Value: records}}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to start merge into %s: %w", table, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting for merge job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("merge job %s failed: %w", job.ID(), err)
	}
	return nil
}

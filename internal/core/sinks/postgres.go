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
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// PostgresStore upserts records with INSERT ... ON CONFLICT, one transaction
// per batch. Tables must have a unique constraint on customer_id.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

func NewPostgresStore(pool *pgxpool.Pool, schema string) *PostgresStore {
	if schema == "" {
		schema = "public"
	}
	return &PostgresStore{pool: pool, schema: schema}
}

func (s *PostgresStore) Name() string {
	return "PostgreSQL"
}

func (s *PostgresStore) qualified(table string) string {
	return pgx.Identifier{s.schema, table}.Sanitize()
}

func (s *PostgresStore) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", s.qualified(table)).Scan(&exists)
	return exists, err
}

// upsertSQL builds the parameterized upsert for one record.
func upsertSQL(qualifiedTable string) string {
	cols := model.CustomerColumns
	params := make([]string, len(cols))
	sets := make([]string, 0, len(cols)-1)
	for i, col := range cols {
		params[i] = fmt.Sprintf("$%d", i+1)
		if col != model.CustomerPrimaryKey {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		qualifiedTable,
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
		model.CustomerPrimaryKey,
		strings.Join(sets, ", "))
}

func (s *PostgresStore) Upsert(ctx context.Context, table string, records []model.CustomerRecord) error {
	sql := upsertSQL(s.qualified(table))
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(sql, r.Values()...)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

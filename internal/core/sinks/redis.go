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

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record in a hash named "<table>:<customer_id>" and
// the ids of a table in the set "<table>:ids". When registryKey is set, a
// table exists only if it is a member of that set.
type RedisStore struct {
	client      redis.UniversalClient
	registryKey string
}

func NewRedisStore(client redis.UniversalClient, registryKey string) *RedisStore {
	return &RedisStore{client: client, registryKey: registryKey}
}

func (s *RedisStore) Name() string {
	return "Redis"
}

// RecordKey is the hash key of one record.
func RecordKey(table string, id int64) string {
	return fmt.Sprintf("%s:%d", table, id)
}

// IndexKey is the set holding the ids written to table.
func IndexKey(table string) string {
	return table + ":ids"
}

func (s *RedisStore) TableExists(ctx context.Context, table string) (bool, error) {
	if s.registryKey == "" {
		return true, nil
	}
	return s.client.SIsMember(ctx, s.registryKey, table).Result()
}

// Upsert writes the batch in one MULTI/EXEC transaction. HSET overwrites
// every field, so a later record replaces an earlier one.
func (s *RedisStore) Upsert(ctx context.Context, table string, records []model.CustomerRecord) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			pipe.HSet(ctx, RecordKey(table, r.CustomerID), r)
			pipe.SAdd(ctx, IndexKey(table), r.CustomerID)
		}
		return nil
	})
	return err
}

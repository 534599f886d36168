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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/sinks"
	"github.com/jaycherian/gcp-go-file-processor/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Upsert(t *testing.T) {
	mr, client := newRedis(t)
	store := sinks.NewRedisStore(client, "")
	ctx := context.Background()

	exists, err := store.TableExists(ctx, "customers")
	require.NoError(t, err)
	assert.True(t, exists, "without a registry every table exists")

	require.NoError(t, store.Upsert(ctx, "customers", []model.CustomerRecord{
		{CustomerID: 1, CustomerName: "Ada", AddrCity: "Austin"},
		{CustomerID: 2, CustomerName: "Grace", AddrCity: "Dallas"},
	}))
	require.NoError(t, store.Upsert(ctx, "customers", []model.CustomerRecord{
		{CustomerID: 1, CustomerName: "Ada King", AddrCity: "Houston"},
	}))

	assert.Equal(t, "Ada King", mr.HGet(sinks.RecordKey("customers", 1), "customer_name"))
	assert.Equal(t, "Houston", mr.HGet(sinks.RecordKey("customers", 1), "addr_city"))
	assert.Equal(t, "1", mr.HGet(sinks.RecordKey("customers", 1), "customer_id"))
	assert.Equal(t, "Grace", mr.HGet(sinks.RecordKey("customers", 2), "customer_name"))

	members, err := mr.Members(sinks.IndexKey("customers"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, members)
}

func TestRedisStore_Registry(t *testing.T) {
	mr, client := newRedis(t)
	_, err := mr.SetAdd("tables", "customers")
	require.NoError(t, err)
	store := sinks.NewRedisStore(client, "tables")
	ctx := context.Background()

	exists, err := store.TableExists(ctx, "customers")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.TableExists(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStore_ThroughKeyValueSink(t *testing.T) {
	mr, client := newRedis(t)
	sink := sinks.NewKeyValueSink(sinks.NewRedisStore(client, ""), 2, nil)

	require.NoError(t, sink.Load(context.Background(), exampleJob(t), []byte(testutil.ExampleRecords)))
	assert.Equal(t, "Ada King", mr.HGet("customers:1", "customer_name"))
	assert.Equal(t, "Grace Hopper", mr.HGet("customers:2", "customer_name"))
	assert.Equal(t, "loaded into Redis", sink.Action(nil))
}

func TestRedisStore_ConnectionFailure(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	err := sinks.NewRedisStore(client, "").Upsert(context.Background(), "customers", []model.CustomerRecord{{CustomerID: 1}})
	assert.Error(t, err)
}

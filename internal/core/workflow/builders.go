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

package workflow

import (
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/notify"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/objectstore"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/sinks"
)

// ErrMissingClient is returned when config selects a backend whose client
// was not opened.
var ErrMissingClient = errors.New("service client not initialized")

// NewObjectStore returns the object store selected by config.
func NewObjectStore(config *cloud.Config, clients *cloud.ServiceClients) (objectstore.ObjectStore, error) {
	switch config.Inbound.ObjectStore {
	case cloud.ObjectStoreMinIO:
		if clients.MinIOClient == nil {
			return nil, fmt.Errorf("%w: minio", ErrMissingClient)
		}
		return objectstore.NewMinIOStore(clients.MinIOClient), nil
	default:
		if clients.StorageClient == nil {
			return nil, fmt.Errorf("%w: storage", ErrMissingClient)
		}
		return objectstore.NewGCSStore(clients.StorageClient), nil
	}
}

// NewSink returns the sink selected by config. Datastore writes go through
// a QuotaAwareWriter sized from the sink settings.
func NewSink(config *cloud.Config, clients *cloud.ServiceClients) (sinks.Sink, error) {
	if config.Sink.Type == cloud.SinkPipeline {
		if clients.PubsubClient == nil {
			return nil, fmt.Errorf("%w: pubsub", ErrMissingClient)
		}
		return sinks.NewPipelineSink(clients.PubsubClient.Topic(config.Pipeline.Topic), config.Pipeline.NamePrefix), nil
	}

	var store sinks.RecordStore
	switch config.Sink.Datastore {
	case cloud.DatastoreRedis:
		if clients.RedisClient == nil {
			return nil, fmt.Errorf("%w: redis", ErrMissingClient)
		}
		store = sinks.NewRedisStore(clients.RedisClient, config.Redis.TableRegistryKey)
	case cloud.DatastorePostgres:
		if clients.PostgresPool == nil {
			return nil, fmt.Errorf("%w: postgres", ErrMissingClient)
		}
		store = sinks.NewPostgresStore(clients.PostgresPool, config.Postgres.Schema)
	default:
		if clients.BigQueryClient == nil {
			return nil, fmt.Errorf("%w: bigquery", ErrMissingClient)
		}
		store = sinks.NewBigQueryStore(clients.BigQueryClient, config.BigQueryDataSource.DatasetName)
	}

	burst := max(1, int(config.Sink.WritesPerSecond))
	writer := cloud.NewQuotaAwareWriter(config.Sink.WritesPerSecond, burst)
	return sinks.NewKeyValueSink(store, config.Sink.BatchSize, writer), nil
}

// NewNotifier returns the notifier selected by config.
func NewNotifier(config *cloud.Config, clients *cloud.ServiceClients) (notify.Notifier, error) {
	switch config.Notification.Backend {
	case cloud.NotifierNATS:
		if clients.NATSConn == nil {
			return nil, fmt.Errorf("%w: nats", ErrMissingClient)
		}
		return notify.NewNATSNotifier(clients.NATSConn), nil
	default:
		if clients.PubsubClient == nil {
			return nil, fmt.Errorf("%w: pubsub", ErrMissingClient)
		}
		return notify.NewPubSubNotifier(clients.PubsubClient), nil
	}
}

// NewFileProcessorFromClients builds the workflow with the backends config
// selects.
func NewFileProcessorFromClients(config *cloud.Config, clients *cloud.ServiceClients) (*FileProcessorWorkflow, error) {
	store, err := NewObjectStore(config, clients)
	if err != nil {
		return nil, err
	}
	sink, err := NewSink(config, clients)
	if err != nil {
		return nil, err
	}
	notifier, err := NewNotifier(config, clients)
	if err != nil {
		return nil, err
	}
	return NewFileProcessorWorkflow(config, store, sink, notifier), nil
}

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

package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// ServiceClients holds the clients of every backend the configuration selects.
// Clients for backends that are not selected stay nil. All of them are safe
// for concurrent use and shared across jobs.
type ServiceClients struct {
	StorageClient   *storage.Client
	MinIOClient     *minio.Client
	PubsubClient    *pubsub.Client
	BigQueryClient  *bigquery.Client
	RedisClient     *redis.Client
	PostgresPool    *pgxpool.Pool
	NATSConn        *nats.Conn
	PubSubListeners map[string]*PubSubListener
}

// Close releases every client that was opened.
func (c *ServiceClients) Close() error {
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	if c.BigQueryClient != nil {
		errs = append(errs, c.BigQueryClient.Close())
	}
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
	if c.NATSConn != nil {
		errs = append(errs, c.NATSConn.Drain())
	}
	return errors.Join(errs...)
}

func natsOptions(config NATS) []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}
	return opts
}

func needsPubSub(config *Config) bool {
	return config.Notification.Backend == NotifierPubSub ||
		config.Sink.Type == SinkPipeline ||
		len(config.TopicSubscriptions) > 0
}

// NewCloudServiceClients opens the clients config asks for. On failure the
// clients opened so far are closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (_ *ServiceClients, err error) {
	clients := &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			_ = clients.Close()
		}
	}()

	switch config.Inbound.ObjectStore {
	case ObjectStoreMinIO:
		clients.MinIOClient, err = minio.New(config.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(config.MinIO.AccessKey, config.MinIO.SecretKey, ""),
			Secure: config.MinIO.UseSSL,
			Region: config.MinIO.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	default:
		clients.StorageClient, err = storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	if needsPubSub(config) {
		clients.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
	}

	if config.Sink.Type == SinkDatastore {
		switch config.Sink.Datastore {
		case DatastoreBigQuery:
			clients.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId)
			if err != nil {
				return nil, fmt.Errorf("failed to create bigquery client: %w", err)
			}
		case DatastoreRedis:
			clients.RedisClient = redis.NewClient(&redis.Options{
				Addr:     config.Redis.Address,
				Password: config.Redis.Password,
				DB:       config.Redis.DB,
			})
		case DatastorePostgres:
			clients.PostgresPool, err = pgxpool.New(ctx, config.Postgres.DSN)
			if err != nil {
				return nil, fmt.Errorf("failed to create postgres pool: %w", err)
			}
		}
	}

	if config.Notification.Backend == NotifierNATS {
		clients.NATSConn, err = nats.Connect(config.NATS.URL, natsOptions(config.NATS)...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
	}

	for key, values := range config.TopicSubscriptions {
		clients.PubSubListeners[key] = NewPubSubListener(clients.PubsubClient, values, nil)
	}

	slog.Info("service clients ready",
		"project", config.Application.GoogleProjectId,
		"object_store", config.Inbound.ObjectStore,
		"sink", config.Sink.Type,
		"datastore", config.Sink.Datastore,
		"notification", config.Notification.Backend,
		"listeners", len(clients.PubSubListeners))
	return clients, nil
}

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

// Package cloud holds the application configuration, the cloud service
// clients built from it and the trigger transports that feed file events into
// the processing chain.
//
// This file defines the configuration structs decoded from TOML.
//
// Structs:
//   - Inbound: where inbound files land and which object store serves them.
//   - Sink: which variant handles a parsed file and how it writes.
//   - BigQueryDataSource, Redis, Postgres: datastore backends.
//   - Pipeline: the downstream pipeline topic for the pipeline variant.
//   - Notification, NATS: where completion messages go.
//   - MinIO: S3-compatible object store endpoint.
//   - TopicSubscription: a Pub/Sub subscription the listener pulls from.
//   - Config: the top-level struct.
package cloud

import "time"

// Object store, sink and notification backend names accepted in config.
const (
	ObjectStoreGCS   = "gcs"
	ObjectStoreMinIO = "minio"

	SinkDatastore = "datastore"
	SinkPipeline  = "pipeline"

	DatastoreBigQuery = "bigquery"
	DatastoreRedis    = "redis"
	DatastorePostgres = "postgres"

	NotifierPubSub = "pubsub"
	NotifierNATS   = "nats"
)

// Defaults applied by NewConfig before any file is decoded.
const (
	DefaultTimeZone         = "America/Chicago"
	DefaultMinFileSizeBytes = 10
	DefaultBatchSize        = 25
	DefaultSubject          = "Data Engineering Academy - Pipeline Notifications"
	DefaultListenAddress    = ":8080"
)

type Inbound struct {
	Bucket      string `toml:"bucket"`       // Default bucket for the run command.
	Prefix      string `toml:"prefix"`       // Key prefix every inbound object starts with, e.g. "inbound/data/".
	ObjectStore string `toml:"object_store"` // "gcs" or "minio".
}

type Telemetry struct {
	Enabled bool `toml:"enabled"` // Export traces and metrics to Google Cloud.
}

type Sink struct {
	Type            string  `toml:"type"`              // "datastore" or "pipeline".
	Datastore       string  `toml:"datastore"`         // "bigquery", "redis" or "postgres".
	BatchSize       int     `toml:"batch_size"`        // Records per write call.
	WritesPerSecond float64 `toml:"writes_per_second"` // Write call rate limit, 0 disables throttling.
}

type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"` // Dataset that holds one table per data file table name.
}

type Redis struct {
	Address          string `toml:"address"`
	Password         string `toml:"password"`
	DB               int    `toml:"db"`
	TableRegistryKey string `toml:"table_registry_key"` // Set of known table names, empty disables the existence check.
}

type Postgres struct {
	DSN    string `toml:"dsn"`
	Schema string `toml:"schema"`
}

type Pipeline struct {
	Topic      string `toml:"topic"`       // Pub/Sub topic the pipeline variant forwards files to.
	NamePrefix string `toml:"name_prefix"` // Prefix of the derived pipeline name.
}

type Notification struct {
	Backend string `toml:"backend"` // "pubsub" or "nats".
	Topic   string `toml:"topic"`   // Pub/Sub topic id or NATS subject.
	Subject string `toml:"subject"` // Subject line attached to every completion message.
}

type NATS struct {
	URL  string `toml:"url"`
	Name string `toml:"name"` // Client connection name.
}

type MinIO struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Region    string `toml:"region"`
}

// TopicSubscription configures one Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	Application struct {
		Name             string `toml:"name"`
		GoogleProjectId  string `toml:"google_project_id"`
		GoogleLocation   string `toml:"location"`
		TimeZone         string `toml:"time_zone"`
		LogLevel         string `toml:"log_level"`
		LogFile          string `toml:"log_file"` // Optional copy of the log output, e.g. "app.log".
		MinFileSizeBytes int64  `toml:"min_file_size_bytes"`
		ListenAddress    string `toml:"listen_address"`
	} `toml:"application"`
	Inbound            Inbound                      `toml:"inbound"`
	Telemetry          Telemetry                    `toml:"telemetry"`
	Sink               Sink                         `toml:"sink"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	Redis              Redis                        `toml:"redis"`
	Postgres           Postgres                     `toml:"postgres"`
	Pipeline           Pipeline                     `toml:"pipeline"`
	Notification       Notification                 `toml:"notification"`
	NATS               NATS                         `toml:"nats"`
	MinIO              MinIO                        `toml:"minio"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.TimeZone = DefaultTimeZone
	c.Application.MinFileSizeBytes = DefaultMinFileSizeBytes
	c.Application.ListenAddress = DefaultListenAddress
	c.Application.LogLevel = "info"
	c.Inbound.ObjectStore = ObjectStoreGCS
	c.Sink.Type = SinkDatastore
	c.Sink.Datastore = DatastoreBigQuery
	c.Sink.BatchSize = DefaultBatchSize
	c.Notification.Backend = NotifierPubSub
	c.Notification.Subject = DefaultSubject
	c.Telemetry.Enabled = true
	return c
}

// Location resolves the configured time zone, falling back to UTC when the
// zone database does not know it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Application.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileBaseName  = ".env"              // Base name of configuration files, e.g. ".env.toml".
	ConfigFileExtension = ".toml"             // Extension of configuration files.
	ConfigSeparator     = "."                 // Separator in ".env.<runtime>.toml".
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // Directory that holds the configuration files.
	EnvConfigRuntime    = "GCP_RUNTIME"       // Runtime name selecting the override file, e.g. "local", "test", "prod".
)

// ErrInvalidConfig is returned by Validate for unknown backend names and
// missing required values.
var ErrInvalidConfig = errors.New("invalid configuration")

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime configuration file names resolved
// from GCP_CONFIG_PREFIX and GCP_RUNTIME. The runtime defaults to "test".
func ConfigFiles() (base string, runtime string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}

	env := os.Getenv(EnvConfigRuntime)
	if env == "" {
		env = "test"
	}

	base = prefix + ConfigFileBaseName + ConfigFileExtension
	runtime = prefix + ConfigFileBaseName + ConfigSeparator + env + ConfigFileExtension
	return base, runtime
}

// LoadConfig decodes the base configuration file and then the runtime file
// over it, so runtime values override base values. Missing files are skipped.
func LoadConfig(baseConfig any) error {
	base, runtime := ConfigFiles()
	slog.Debug("loading configuration", "base", base, "runtime", runtime)

	for _, name := range []string{base, runtime} {
		if !fileExists(name) {
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks backend names and the values each selected backend needs.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Application.MinFileSizeBytes >= 0, "application.min_file_size_bytes must not be negative")
	check(c.Inbound.ObjectStore == ObjectStoreGCS || c.Inbound.ObjectStore == ObjectStoreMinIO,
		"inbound.object_store %q is not one of gcs, minio", c.Inbound.ObjectStore)
	check(c.Inbound.ObjectStore != ObjectStoreMinIO || c.MinIO.Endpoint != "", "minio.endpoint is required")

	switch c.Sink.Type {
	case SinkDatastore:
		check(c.Sink.BatchSize > 0, "sink.batch_size must be positive")
		switch c.Sink.Datastore {
		case DatastoreBigQuery:
			check(c.BigQueryDataSource.DatasetName != "", "big_query_data_source.dataset is required")
		case DatastoreRedis:
			check(c.Redis.Address != "", "redis.address is required")
		case DatastorePostgres:
			check(c.Postgres.DSN != "", "postgres.dsn is required")
		default:
			check(false, "sink.datastore %q is not one of bigquery, redis, postgres", c.Sink.Datastore)
		}
	case SinkPipeline:
		check(c.Pipeline.Topic != "", "pipeline.topic is required")
	default:
		check(false, "sink.type %q is not one of datastore, pipeline", c.Sink.Type)
	}

	switch c.Notification.Backend {
	case NotifierPubSub:
	case NotifierNATS:
		check(c.NATS.URL != "", "nats.url is required")
	default:
		check(false, "notification.backend %q is not one of pubsub, nats", c.Notification.Backend)
	}
	check(c.Notification.Topic != "", "notification.topic is required")

	return errors.Join(errs...)
}

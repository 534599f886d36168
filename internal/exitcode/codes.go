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

// Package exitcode maps job failures to process exit codes so a scheduler
// can tell a bad file from a transient outage.
package exitcode

import (
	"errors"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

const (
	// Success - the file was processed.
	Success = 0

	// ConfigError - missing or invalid configuration or client setup.
	// Don't retry: fix the config first.
	ConfigError = 1

	// DataError - the event, filename or file content is unusable.
	// Don't retry: investigate the file.
	DataError = 2

	// StorageError - the object store could not be read or the file could
	// not be deleted. Retry with backoff.
	StorageError = 3

	// DatastoreError - the records could not be written or forwarded.
	// Retry with backoff once the target exists.
	DatastoreError = 4

	// NotificationError - the file was processed but the completion message
	// was not published.
	NotificationError = 5
)

// For returns the exit code for err. Errors not produced by a job are
// configuration errors.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, cloud.ErrInvalidConfig):
		return ConfigError
	case errors.Is(err, cloud.ErrUnrecognizedEvent),
		errors.Is(err, model.ErrPrefixMismatch),
		errors.Is(err, model.ErrTokenCountMismatch),
		errors.Is(err, model.ErrExtensionMismatch),
		errors.Is(err, model.ErrFileTooSmall):
		return DataError
	case errors.Is(err, model.ErrObjectFetchFailed),
		errors.Is(err, model.ErrDeleteFailed):
		return StorageError
	case errors.Is(err, model.ErrBatchWriteFailed),
		errors.Is(err, model.ErrTableNotFound),
		errors.Is(err, model.ErrForwardFailed):
		return DatastoreError
	case errors.Is(err, model.ErrNotifyFailed):
		return NotificationError
	}
	return ConfigError
}

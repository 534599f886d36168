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

// Package objectstore reads and deletes inbound files. Two implementations are
// provided: Google Cloud Storage and any S3-compatible store reachable with
// the MinIO client. Failures are classified with model.ErrObjectNotFound and
// model.ErrAccessDenied so callers do not need to know the backend.
package objectstore

import (
	"context"
)

// ObjectStore is the narrow view of an object store the processor needs.
type ObjectStore interface {
	// Size returns the object size in bytes without reading the content.
	Size(ctx context.Context, bucket string, key string) (int64, error)
	// Read returns the full object content.
	Read(ctx context.Context, bucket string, key string) ([]byte, error)
	// Delete removes the object. Deleting a missing object succeeds.
	Delete(ctx context.Context, bucket string, key string) error
	// Scheme is the URI scheme used when logging object locations.
	Scheme() string
}

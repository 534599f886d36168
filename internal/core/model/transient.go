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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the structures that only live in memory
// while one file event is processed. They are passed between the commands of
// the processing chain and discarded once the chain finishes.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileEvent is the normalized trigger for one job: the object that landed and
// where it landed. It is produced from either a Cloud Storage notification or
// an S3-style event record.
type FileEvent struct {
	RunID  string    // Unique id of this invocation, used to correlate logs and messages.
	Bucket string    // The bucket the object landed in.
	Key    string    // The decoded object key, including the inbound prefix.
	Region string    // The region reported by the event, if any.
	Start  time.Time // When processing started, in the configured time zone.
}

// NewFileEvent creates a FileEvent with a fresh run id, stamped with the
// current time in loc.
func NewFileEvent(bucket string, key string, region string, loc *time.Location) *FileEvent {
	if loc == nil {
		loc = time.UTC
	}
	return &FileEvent{
		RunID:  uuid.NewString(),
		Bucket: bucket,
		Key:    key,
		Region: region,
		Start:  time.Now().In(loc),
	}
}

// URI renders the object location for logs, e.g. gs://bucket/inbound/data/x.csv.
func (e *FileEvent) URI(scheme string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, e.Bucket, e.Key)
}

// FileObject is the object's content as read from the store.
type FileObject struct {
	Size    int64
	Payload []byte
}

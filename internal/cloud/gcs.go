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
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// ErrUnrecognizedEvent is returned when a trigger payload is neither a Cloud
// Storage notification nor an S3-style event.
var ErrUnrecognizedEvent = errors.New("unrecognized storage event")

// Pub/Sub attributes set by Cloud Storage notifications.
const (
	AttrEventType       = "eventType"
	EventObjectFinalize = "OBJECT_FINALIZE"
)

// GCSPubSubNotification is the JSON payload Cloud Storage publishes to Pub/Sub
// when an object changes. Only the fields the processor reads are decoded.
type GCSPubSubNotification struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Bucket      string `json:"bucket"`
	Generation  string `json:"generation"`
	ContentType string `json:"contentType"`
	TimeCreated string `json:"timeCreated"`
	Size        string `json:"size"`
}

// S3EventRecord is one record of an S3-style bucket notification, as emitted
// by MinIO and S3-compatible stores.
type S3EventRecord struct {
	EventName string `json:"eventName"`
	AWSRegion string `json:"awsRegion"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
		} `json:"object"`
	} `json:"s3"`
}

// storageEvent overlays both payload shapes so one decode can tell them apart.
type storageEvent struct {
	GCSPubSubNotification
	Records []S3EventRecord `json:"Records"`
}

// DecodeFileEvent turns a trigger payload into a FileEvent stamped in loc.
// S3-style keys are URL-decoded ("+" is a space); Cloud Storage names are
// used as-is. Only the first S3 record is read.
func DecodeFileEvent(data []byte, loc *time.Location) (*model.FileEvent, error) {
	var evt storageEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedEvent, err)
	}

	if len(evt.Records) > 0 {
		rec := evt.Records[0]
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: object key %q: %w", ErrUnrecognizedEvent, rec.S3.Object.Key, err)
		}
		if rec.S3.Bucket.Name == "" || key == "" {
			return nil, fmt.Errorf("%w: S3 record without bucket or key", ErrUnrecognizedEvent)
		}
		return model.NewFileEvent(rec.S3.Bucket.Name, key, rec.AWSRegion, loc), nil
	}

	if evt.Bucket != "" && evt.Name != "" {
		return model.NewFileEvent(evt.Bucket, evt.Name, "", loc), nil
	}
	return nil, ErrUnrecognizedEvent
}

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

// Package testutil provides fixtures and helpers shared by the test suites:
// sample trigger payloads, a ready-to-use configuration and an in-process
// Pub/Sub server.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	// ExamplePrefix is the inbound prefix used throughout the tests.
	ExamplePrefix = "inbound/data/"
	// ExampleKey is a well-formed inbound object key.
	ExampleKey = ExamplePrefix + "2021_12_21_120000-data-normal-full-crm-sales-prod-v1-customers-p1.csv"
	// ExampleTableID is the table id derived from ExampleKey.
	ExampleTableID = "CRM_SALES_CUSTOMERS_PROD_v1"
	// ExampleRecords is a small customer data file with a trailing newline and
	// a repeated key.
	ExampleRecords = "1|2021-12-01|Ada Lovelace|1 Main St|Austin|TX|78701\n" +
		"2|2021-12-02|Grace Hopper|2 Oak Ave|Dallas|TX|75201\n" +
		"1|2021-12-03|Ada King|3 Elm Rd|Austin|TX|78702\n"

	TestProject = "test-project"
)

// GCSNotification returns a Cloud Storage Pub/Sub notification payload for
// an object that was just finalized.
func GCSNotification(bucket string, name string) []byte {
	return []byte(fmt.Sprintf(`{
  "kind": "storage#object",
  "id": "%[1]s/%[2]s/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/%[1]s/o/%[2]s",
  "name": "%[2]s",
  "bucket": "%[1]s",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "text/csv",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "162",
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`, bucket, name))
}

// S3Event returns an S3-style put notification. key is inserted verbatim, so
// callers pass it URL-encoded the way S3 and MinIO deliver it.
func S3Event(bucket string, key string, region string) []byte {
	return []byte(fmt.Sprintf(`{
  "Records": [
    {
      "eventVersion": "2.1",
      "eventSource": "aws:s3",
      "awsRegion": "%[3]s",
      "eventName": "ObjectCreated:Put",
      "s3": {
        "bucket": {"name": "%[1]s"},
        "object": {"key": "%[2]s", "size": 162}
      }
    }
  ]
}`, bucket, key, region))
}

// GetConfig returns a valid configuration for the datastore variant backed
// by BigQuery, with Pub/Sub notifications and no telemetry export.
func GetConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "file-processor-test"
	config.Application.GoogleProjectId = TestProject
	config.Inbound.Bucket = "landing"
	config.Inbound.Prefix = ExamplePrefix
	config.BigQueryDataSource.DatasetName = "customers"
	config.Pipeline.Topic = "pipeline-files"
	config.Notification.Topic = "file-notifications"
	config.Telemetry.Enabled = false
	return config
}

// NewPubSubClient starts an in-process Pub/Sub server and returns a client
// connected to it. Both are closed when the test ends.
func NewPubSubClient(t *testing.T) (*pubsub.Client, *pstest.Server) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial pstest server: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(context.Background(), TestProject, option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("failed to create pubsub client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

// CreateTopic creates a topic and, when subscription is not empty, a
// subscription to it.
func CreateTopic(t *testing.T, client *pubsub.Client, topic string, subscription string) *pubsub.Topic {
	t.Helper()
	ctx := context.Background()
	tp, err := client.CreateTopic(ctx, topic)
	if err != nil {
		t.Fatalf("failed to create topic %s: %v", topic, err)
	}
	t.Cleanup(tp.Stop)
	if subscription != "" {
		if _, err := client.CreateSubscription(ctx, subscription, pubsub.SubscriptionConfig{Topic: tp}); err != nil {
			t.Fatalf("failed to create subscription %s: %v", subscription, err)
		}
	}
	return tp
}

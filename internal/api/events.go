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

// Package api exposes the file processor over HTTP. Storage events arrive
// either as Pub/Sub push deliveries or as raw bucket notifications (S3 and
// MinIO webhooks, Cloud Storage JSON) posted to the same endpoint.
//
// Routes:
//   - POST /api/v1/events: run one job for the posted event.
//   - GET  /api/v1/stats: counts of processed, failed and ignored events.
//   - GET  /healthz: liveness.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
)

// Processor runs a job for a raw trigger payload.
type Processor interface {
	Process(ctx context.Context, payload []byte) (string, error)
}

// PushEnvelope is the body of a Pub/Sub push delivery.
type PushEnvelope struct {
	Message struct {
		Data       []byte            `json:"data"` // base64 in JSON
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// unwrap returns the trigger payload carried by body. A push envelope is
// recognized by its subscription and message data; anything else is passed
// through as-is.
func unwrap(body []byte) (payload []byte, attributes map[string]string, messageID string) {
	var env PushEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Subscription != "" && len(env.Message.Data) > 0 {
		return env.Message.Data, env.Message.Attributes, env.Message.MessageID
	}
	return body, nil, ""
}

// EventRouter registers POST /events under r.
//
// A job that fails answers 500 so push subscriptions and webhook senders
// redeliver. Events other than OBJECT_FINALIZE answer 204 and are not
// processed.
func EventRouter(r *gin.RouterGroup, processor Processor, stats *Stats) {
	r.POST("/events", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
			return
		}

		payload, attributes, messageID := unwrap(body)
		if eventType, ok := attributes[cloud.AttrEventType]; ok && eventType != cloud.EventObjectFinalize {
			stats.ignored.Add(1)
			c.Status(http.StatusNoContent)
			return
		}

		message, err := processor.Process(c.Request.Context(), payload)
		if err != nil {
			stats.failed.Add(1)
			status := http.StatusInternalServerError
			if errors.Is(err, cloud.ErrUnrecognizedEvent) {
				status = http.StatusBadRequest
			}
			slog.ErrorContext(c.Request.Context(), "event processing failed", "message_id", messageID, "status", status, "error", err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		stats.processed.Add(1)
		c.JSON(http.StatusOK, gin.H{"message": message})
	})
}

// NewRouter builds the HTTP handler for serviceName.
func NewRouter(serviceName string, processor Processor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	stats := &Stats{}
	apiV1 := r.Group("/api/v1")
	{
		EventRouter(apiV1, processor, stats)
		Dashboard(apiV1, stats)
	}
	return r
}

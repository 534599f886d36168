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

// Package cloud holds the configuration, service clients and trigger
// transports. This file defines PubSubListener, the streaming-pull transport.
//
// Logic Flow:
//
//  1. Listen starts a streaming pull on the subscription in a goroutine.
//  2. Each message gets its own span and its own cor.Context, with the message
//     data as the chain input. Messages whose eventType attribute is present
//     and is not OBJECT_FINALIZE are acknowledged without running the chain.
//  3. The chain runs with the subscription's timeout, if one is configured.
//  4. A message is acknowledged when the chain succeeds and negatively
//     acknowledged otherwise, so Pub/Sub redelivers it or dead-letters it.
package cloud

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener feeds the messages of one subscription into a command.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	timeout      time.Duration
	command      cor.Command
}

// NewPubSubListener binds the subscription named in config to command. The
// command may be set later with SetCommand.
func NewPubSubListener(pubsubClient *pubsub.Client, config TopicSubscription, command cor.Command) *PubSubListener {
	return &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(config.Name),
		timeout:      time.Duration(config.TimeoutInSeconds) * time.Second,
		command:      command,
	}
}

// SetCommand sets the command if none is set yet.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts receiving in the background and returns immediately. The
// returned channel yields the error Receive stopped with, then closes.
func (m *PubSubListener) Listen(ctx context.Context) <-chan error {
	slog.InfoContext(ctx, "listening", "subscription", m.subscription.ID())
	done := make(chan error, 1)

	go func() {
		defer close(done)
		err := m.subscription.Receive(ctx, m.handle)
		if err != nil {
			slog.ErrorContext(ctx, "error receiving messages", "subscription", m.subscription.ID(), "error", err)
		}
		done <- err
	}()
	return done
}

func (m *PubSubListener) handle(ctx context.Context, msg *pubsub.Message) {
	tracer := otel.Tracer("message-listener")
	spanCtx, span := tracer.Start(ctx, "receive-message")
	defer span.End()
	span.SetAttributes(
		attribute.String("message_id", msg.ID),
		attribute.String("subscription", m.subscription.ID()),
	)

	if eventType, ok := msg.Attributes[AttrEventType]; ok && eventType != EventObjectFinalize {
		slog.DebugContext(spanCtx, "ignoring storage event", "event_type", eventType, "message_id", msg.ID)
		span.SetStatus(codes.Ok, "ignored")
		msg.Ack()
		return
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		spanCtx, cancel = context.WithTimeout(spanCtx, m.timeout)
		defer cancel()
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(spanCtx)
	chainCtx.Add(cor.CtxIn, msg.Data)

	m.command.Execute(chainCtx)

	if err := chainCtx.Err(); err != nil {
		span.SetStatus(codes.Error, "failed")
		span.RecordError(err)
		slog.ErrorContext(spanCtx, "file processing failed", "message_id", msg.ID, "error", err)
		msg.Nack()
		return
	}
	span.SetStatus(codes.Ok, "success")
	msg.Ack()
}

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

// Package notify publishes job completion messages.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/nats-io/nats.go"
)

// AttrSubject carries the message subject as a Pub/Sub attribute or NATS
// header.
const AttrSubject = "Subject"

// Notifier publishes a text message with a subject to a topic.
type Notifier interface {
	Publish(ctx context.Context, topic string, subject string, message string) error
}

// PubSubNotifier publishes to Pub/Sub topics. Topic handles are created on
// first use and reused.
type PubSubNotifier struct {
	client *pubsub.Client
	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func NewPubSubNotifier(client *pubsub.Client) *PubSubNotifier {
	return &PubSubNotifier{client: client, topics: make(map[string]*pubsub.Topic)}
}

func (n *PubSubNotifier) topic(id string) *pubsub.Topic {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.topics[id]
	if !ok {
		t = n.client.Topic(id)
		n.topics[id] = t
	}
	return t
}

// Publish waits for the server to acknowledge the message.
func (n *PubSubNotifier) Publish(ctx context.Context, topic string, subject string, message string) error {
	res := n.topic(topic).Publish(ctx, &pubsub.Message{
		Data:       []byte(message),
		Attributes: map[string]string{AttrSubject: subject},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and stops every topic handle.
func (n *PubSubNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, t := range n.topics {
		t.Stop()
	}
}

// NATSConn is the part of *nats.Conn the notifier uses.
type NATSConn interface {
	PublishMsg(msg *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
}

// NATSNotifier publishes to NATS subjects. The topic is the NATS subject and
// the message subject travels in a header.
type NATSNotifier struct {
	conn         NATSConn
	flushTimeout time.Duration
}

func NewNATSNotifier(conn NATSConn) *NATSNotifier {
	return &NATSNotifier{conn: conn, flushTimeout: 5 * time.Second}
}

// Publish flushes after publishing so a failure to reach the server is
// reported to the caller.
func (n *NATSNotifier) Publish(ctx context.Context, topic string, subject string, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := nats.NewMsg(topic)
	msg.Data = []byte(message)
	msg.Header.Set(AttrSubject, subject)

	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	timeout := n.flushTimeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	if err := n.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("failed to flush %s: %w", topic, err)
	}
	return nil
}

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

package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
)

// MemoryStore is an in-memory object store. Failures can be injected per
// operation.
type MemoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	Deleted   []string
	SizeErr   error
	ReadErr   error
	DeleteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(bucket string, key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = content
}

func (s *MemoryStore) Has(bucket string, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[bucket+"/"+key]
	return ok
}

func (s *MemoryStore) Scheme() string { return "mem" }

func (s *MemoryStore) Size(_ context.Context, bucket string, key string) (int64, error) {
	if s.SizeErr != nil {
		return 0, s.SizeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[bucket+"/"+key]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", model.ErrObjectNotFound, bucket, key)
	}
	return int64(len(content)), nil
}

func (s *MemoryStore) Read(_ context.Context, bucket string, key string) ([]byte, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", model.ErrObjectNotFound, bucket, key)
	}
	return content, nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket string, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+key)
	s.Deleted = append(s.Deleted, bucket+"/"+key)
	return nil
}

// RecordingSink remembers every payload it was given.
type RecordingSink struct {
	mu       sync.Mutex
	Payloads [][]byte
	Err      error
}

func (s *RecordingSink) Load(_ context.Context, _ *model.JobContext, payload []byte) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Payloads = append(s.Payloads, payload)
	return nil
}

func (s *RecordingSink) Action(_ *model.JobContext) string {
	return "loaded into Memory"
}

// Notification is one message captured by RecordingNotifier.
type Notification struct {
	Topic   string
	Subject string
	Message string
}

// RecordingNotifier remembers every notification it was asked to publish.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []Notification
	Err      error
}

func (n *RecordingNotifier) Publish(_ context.Context, topic string, subject string, message string) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, Notification{Topic: topic, Subject: subject, Message: message})
	return nil
}

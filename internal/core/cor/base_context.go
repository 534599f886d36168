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

package cor

import (
	"context"
	"errors"
	"sync"
)

// BaseContext is the default Context. It is safe for concurrent use.
type BaseContext struct {
	mu      sync.RWMutex
	data    map[string]any
	errors  map[string]error
	order   []string // command names in the order their errors were recorded
	context context.Context
}

// NewBaseContext returns an empty Context. Callers must SetContext before
// running a chain.
func NewBaseContext() Context {
	return &BaseContext{
		data:   make(map[string]any),
		errors: make(map[string]error),
	}
}

func (c *BaseContext) SetContext(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context = ctx
}

func (c *BaseContext) GetContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.context
}

func (c *BaseContext) Add(key string, value any) Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// AddError records err for key. A second error for the same key replaces the
// first but keeps its position.
func (c *BaseContext) AddError(key string, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.errors[key]; !ok {
		c.order = append(c.order, key)
	}
	c.errors[key] = err
}

// GetErrors returns a copy of the recorded errors.
func (c *BaseContext) GetErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]error, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *BaseContext) HasErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.errors) > 0
}

func (c *BaseContext) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	errs := make([]error, 0, len(c.order))
	for _, key := range c.order {
		errs = append(errs, c.errors[key])
	}
	return errors.Join(errs...)
}

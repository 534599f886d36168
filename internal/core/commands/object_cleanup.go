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

package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/objectstore"
)

// ObjectCleanup deletes the source object once its content has been loaded.
// It only runs after a successful load.
type ObjectCleanup struct {
	cor.BaseCommand
	store objectstore.ObjectStore
}

func NewObjectCleanup(name string, store objectstore.ObjectStore) *ObjectCleanup {
	return &ObjectCleanup{BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepDelete), store: store}
}

func (c *ObjectCleanup) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		fileEvent(context) != nil && context.Get(ParamSinkAction) != nil
}

func (c *ObjectCleanup) Execute(context cor.Context) {
	evt := fileEvent(context)
	uri := evt.URI(c.store.Scheme())

	if err := c.store.Delete(context.GetContext(), evt.Bucket, evt.Key); err != nil {
		fail(c, context, StepDeleteFailed,
			fmt.Sprintf("error deleting %s from bucket %s", evt.Key, evt.Bucket),
			fmt.Errorf("%w: %w", model.ErrDeleteFailed, err))
		return
	}

	slog.InfoContext(context.GetContext(), "source file deleted", "uri", uri)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}

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

// ObjectSizeCheck rejects objects smaller than minSize bytes. It runs before
// the filename is parsed, so an empty file with a malformed name is reported
// as empty.
type ObjectSizeCheck struct {
	cor.BaseCommand
	store   objectstore.ObjectStore
	minSize int64
}

func NewObjectSizeCheck(name string, store objectstore.ObjectStore, minSize int64) *ObjectSizeCheck {
	return &ObjectSizeCheck{BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepSizeCheck), store: store, minSize: minSize}
}

func (c *ObjectSizeCheck) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && fileEvent(context) != nil
}

func (c *ObjectSizeCheck) Execute(context cor.Context) {
	evt := fileEvent(context)
	uri := evt.URI(c.store.Scheme())

	size, err := c.store.Size(context.GetContext(), evt.Bucket, evt.Key)
	if err != nil {
		fail(c, context, StepReadFailed, "could not read metadata of "+uri, fmt.Errorf("%w: %w", model.ErrObjectFetchFailed, err))
		return
	}
	slog.InfoContext(context.GetContext(), "size of file", "uri", uri, "bytes", size)

	if size < c.minSize {
		fail(c, context, StepFileEmpty,
			fmt.Sprintf("file %s is %d bytes, minimum is %d", uri, size, c.minSize),
			model.ErrFileTooSmall)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamFileObject, &model.FileObject{Size: size})
}

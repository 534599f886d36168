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

	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/objectstore"
)

// ObjectReader reads the object content into memory. Inbound files are
// expected to be small enough for a single read.
type ObjectReader struct {
	cor.BaseCommand
	store objectstore.ObjectStore
}

func NewObjectReader(name string, store objectstore.ObjectStore) *ObjectReader {
	return &ObjectReader{BaseCommand: *cor.NewBaseCommand(name).WithDescription(StepRead), store: store}
}

func (c *ObjectReader) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		fileEvent(context) != nil && jobContext(context) != nil
}

func (c *ObjectReader) Execute(context cor.Context) {
	evt := fileEvent(context)

	payload, err := c.store.Read(context.GetContext(), evt.Bucket, evt.Key)
	if err != nil {
		fail(c, context, StepReadFailed, "could not read "+evt.URI(c.store.Scheme()), fmt.Errorf("%w: %w", model.ErrObjectFetchFailed, err))
		return
	}

	obj := fileObject(context)
	if obj == nil {
		obj = &model.FileObject{}
	}
	obj.Size = int64(len(payload))
	obj.Payload = payload

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamFileObject, obj)
	context.Add(c.GetOutputParam(), obj)
}

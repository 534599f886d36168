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

package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/jaycherian/gcp-go-file-processor/internal/exitcode"
	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"invalid config", fmt.Errorf("%w: missing bucket", cloud.ErrInvalidConfig), exitcode.ConfigError},
		{"token count", model.NewStepError("parse", "", &model.TokenCountError{Expected: 10, Got: 9}), exitcode.DataError},
		{"too small", model.NewStepError("size", "", model.ErrFileTooSmall), exitcode.DataError},
		{"unrecognized event", cloud.ErrUnrecognizedEvent, exitcode.DataError},
		{"fetch", fmt.Errorf("%w: %w", model.ErrObjectFetchFailed, model.ErrAccessDenied), exitcode.StorageError},
		{"delete", model.ErrDeleteFailed, exitcode.StorageError},
		{"table", model.ErrTableNotFound, exitcode.DatastoreError},
		{"forward", model.ErrForwardFailed, exitcode.DatastoreError},
		{"notify", errors.Join(model.NewStepError("notify", "", model.ErrNotifyFailed)), exitcode.NotificationError},
		{"unknown", errors.New("dial tcp: refused"), exitcode.ConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitcode.For(tt.err))
		})
	}
}

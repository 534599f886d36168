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

package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-file-processor/internal/cloud"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/cor"
)

// SetupListeners attaches command to every configured subscription and
// starts receiving. The returned channels report why each listener stopped.
func SetupListeners(ctx context.Context, listeners map[string]*cloud.PubSubListener, command cor.Command) []<-chan error {
	done := make([]<-chan error, 0, len(listeners))
	for name, listener := range listeners {
		slog.InfoContext(ctx, "starting listener", "name", name)
		listener.SetCommand(command)
		done = append(done, listener.Listen(ctx))
	}
	return done
}

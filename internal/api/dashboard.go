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

package api

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Stats counts the jobs handled by this process since it started.
type Stats struct {
	processed atomic.Int64
	failed    atomic.Int64
	ignored   atomic.Int64
}

// StatsSnapshot is the JSON body of GET /stats.
type StatsSnapshot struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Ignored   int64 `json:"ignored"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Processed: s.processed.Load(),
		Failed:    s.failed.Load(),
		Ignored:   s.ignored.Load(),
	}
}

// Dashboard registers GET /stats under r.
func Dashboard(r *gin.RouterGroup, stats *Stats) {
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Snapshot())
	})
}

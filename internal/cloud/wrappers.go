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

package cloud

import (
	"context"

	"golang.org/x/time/rate"
)

// QuotaAwareWriter throttles calls against a backend with a write quota, such
// as BigQuery DML or a shared Redis. Calls block until the limiter admits them
// or ctx is done.
type QuotaAwareWriter struct {
	limiter *rate.Limiter
}

// NewQuotaAwareWriter allows writesPerSecond calls per second with the given
// burst. A non-positive rate disables throttling.
func NewQuotaAwareWriter(writesPerSecond float64, burst int) *QuotaAwareWriter {
	limit := rate.Limit(writesPerSecond)
	if writesPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &QuotaAwareWriter{limiter: rate.NewLimiter(limit, burst)}
}

// Do waits for a token and then calls fn.
func (q *QuotaAwareWriter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := q.limiter.Wait(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

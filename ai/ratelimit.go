// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedModel wraps a Model with a request limiter.
// Waiting honours context cancellation, so an abandoned request never
// holds a slot.
type RateLimitedModel struct {
	inner   Model
	limiter *rate.Limiter
}

var _ Model = (*RateLimitedModel)(nil)

// WithRateLimit wraps m so that at most requestsPerMinute calls start per minute.
// A nil model stays nil and requestsPerMinute <= 0 returns m unchanged.
func WithRateLimit(m Model, requestsPerMinute, burst int) Model {
	if m == nil || requestsPerMinute <= 0 {
		return m
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedModel{
		inner:   m,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// Name returns the underlying model name.
func (r *RateLimitedModel) Name() string {
	return r.inner.Name()
}

// Generate waits for limiter clearance and delegates to the inner model.
func (r *RateLimitedModel) Generate(ctx context.Context, prompt string, attachment *Attachment) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Generate(ctx, prompt, attachment)
}

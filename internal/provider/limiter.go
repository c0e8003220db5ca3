// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limited spaces consecutive requests to the wrapped generator by at least
// the configured interval.
type Limited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewLimited wraps g. A non-positive interval disables limiting.
func NewLimited(g Generator, minInterval time.Duration) *Limited {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Limited{next: g, limiter: rate.NewLimiter(limit, 1)}
}

// Name implements Generator.
func (l *Limited) Name() string {
	return l.next.Name()
}

// Generate waits for the limiter and then calls the wrapped generator.
func (l *Limited) Generate(ctx context.Context, req Request) (Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("send limiter: %w", err)
	}
	return l.next.Generate(ctx, req)
}

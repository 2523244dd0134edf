// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package tmdb

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/metrics"
)

// BreakerProvider wraps a media.Provider with a circuit breaker so that a
// degraded TMDB API fails fast instead of stalling every retrieval tier.
//
// The breaker uses real time for its interval and timeout calculations.
type BreakerProvider struct {
	inner media.Provider
	cb    *gobreaker.CircuitBreaker[interface{}]
}

var _ media.Provider = (*BreakerProvider)(nil)

// NewBreakerProvider wraps inner with a circuit breaker.
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - Opens at >=60% failure rate with minimum 10 requests
func NewBreakerProvider(inner media.Provider) *BreakerProvider {
	const cbName = "tmdb"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", stateString(from)).
				Str("to", stateString(to)).
				Msg("circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateString(from), stateString(to)).Inc()
		},
	})

	return &BreakerProvider{inner: inner, cb: cb}
}

// execute runs fn through the breaker and casts the result.
func execute[T any](b *BreakerProvider, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (b *BreakerProvider) SearchText(ctx context.Context, query string, filter media.SearchFilter) ([]media.Content, error) {
	return execute(b, func() ([]media.Content, error) {
		return b.inner.SearchText(ctx, query, filter)
	})
}

func (b *BreakerProvider) Discover(ctx context.Context, filter media.DiscoverFilter) ([]media.Content, error) {
	return execute(b, func() ([]media.Content, error) {
		return b.inner.Discover(ctx, filter)
	})
}

func (b *BreakerProvider) SearchPerson(ctx context.Context, name string) ([]media.Person, error) {
	return execute(b, func() ([]media.Person, error) {
		return b.inner.SearchPerson(ctx, name)
	})
}

func (b *BreakerProvider) PersonCredits(ctx context.Context, personID int) (media.Credits, error) {
	return execute(b, func() (media.Credits, error) {
		return b.inner.PersonCredits(ctx, personID)
	})
}

func (b *BreakerProvider) Similar(ctx context.Context, id int, mediaType media.MediaType) ([]media.Content, error) {
	return execute(b, func() ([]media.Content, error) {
		return b.inner.Similar(ctx, id, mediaType)
	})
}

func (b *BreakerProvider) Trending(ctx context.Context, mediaType media.MediaType, window media.TrendingWindow) ([]media.Content, error) {
	return execute(b, func() ([]media.Content, error) {
		return b.inner.Trending(ctx, mediaType, window)
	})
}

func (b *BreakerProvider) RecentReleases(ctx context.Context, mediaType media.MediaType) ([]media.Content, error) {
	return execute(b, func() ([]media.Content, error) {
		return b.inner.RecentReleases(ctx, mediaType)
	})
}

func stateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPService runs an http.Server as a supervised service. A listen
// failure returns the error so the supervisor restarts it with
// backoff; context cancellation shuts the server down gracefully.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewHTTPService wraps server for supervision.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("component", "http").Logger(),
	}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("Graceful shutdown failed")
		}
		return ctx.Err()
	}
}

// String names the service in supervision logs.
func (s *HTTPService) String() string { return "http-server" }

// GarbageCollector periodically invokes a collection function, used
// for Badger value-log GC on the L2 cache backend.
type GarbageCollector struct {
	interval time.Duration
	collect  func() error
	logger   zerolog.Logger
}

// NewGarbageCollector builds a GC loop service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGarbageCollector(interval time.Duration, collect func() error, logger zerolog.Logger) *GarbageCollector {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GarbageCollector{
		interval: interval,
		collect:  collect,
		logger:   logger.With().Str("component", "cache-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (g *GarbageCollector) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.collect(); err != nil {
				g.logger.Debug().Err(err).Msg("Collection pass skipped")
			}
		}
	}
}

// String names the service in supervision logs.
func (g *GarbageCollector) String() string { return "cache-gc" }

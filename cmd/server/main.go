// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Command server runs the Kinoscope search API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/api"
	"github.com/kinoscope/kinoscope/internal/cache"
	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/embedding"
	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/ranking"
	"github.com/kinoscope/kinoscope/internal/retrieval"
	"github.com/kinoscope/kinoscope/internal/search"
	"github.com/kinoscope/kinoscope/internal/supervisor"
	"github.com/kinoscope/kinoscope/internal/tmdb"
	"github.com/kinoscope/kinoscope/internal/vector"
)

// seedLimit bounds how much catalog content is embedded at startup.
const seedLimit = 500

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()
	logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting Kinoscope")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metadata provider, optionally behind a circuit breaker.
	var provider media.Provider = tmdb.NewClient(&cfg.TMDB)
	if cfg.TMDB.BreakerEnabled {
		provider = tmdb.NewBreakerProvider(provider)
	}

	// Optional L2 cache backend. A backend failure at startup degrades
	// to L1-only instead of refusing to start.
	var backend cache.Backend
	var badgerBackend *cache.BadgerBackend
	switch cfg.Cache.Backend {
	case config.CacheBackendBadger:
		badgerBackend, err = cache.NewBadgerBackend(cfg.Cache.BadgerPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Badger backend unavailable, running L1-only")
		} else {
			backend = badgerBackend
			defer func() { _ = badgerBackend.Close() }()
		}
	case config.CacheBackendNATS:
		natsBackend, nerr := cache.NewNATSKVBackend(ctx, cfg.Cache.NATSURL, cfg.Cache.NATSBucket, cfg.Cache.L2TTL)
		if nerr != nil {
			logger.Warn().Err(nerr).Msg("NATS backend unavailable, running L1-only")
		} else {
			backend = natsBackend
			defer func() { _ = natsBackend.Close() }()
		}
	}

	intents := cache.NewTiered[intent.Intent]("intent",
		cfg.Cache.IntentMaxSize, cfg.Cache.IntentTTL, cfg.Cache.L2TTL, backend, logger)
	results := cache.NewTiered[[]media.MergedResult]("result",
		cfg.Cache.ResultMaxSize, cfg.Cache.ResultTTL, cfg.Cache.L2TTL, backend, logger)

	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build embedding provider")
	}
	index := vector.NewIndex(&cfg.Vector, embedder.Dimensions())
	searcher := vector.NewSearcher(index, embedder, cfg.Vector.TopK, logger)

	// Seed the vector index from trending and popular content so
	// semantic search has neighbors from the first request.
	go seedIndex(ctx, index, embedder, provider, logger)

	engine := search.New(
		intent.NewParser(intents, nil, logger),
		retrieval.New(provider, &cfg.Search, logger),
		searcher,
		ranking.New(cfg.Search.MaxResults, nil),
		results,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(engine, logger).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.New(logging.NewSlogLogger(), supervisor.Config{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.Add(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout, logger))
	if badgerBackend != nil {
		tree.Add(supervisor.NewGarbageCollector(10*time.Minute, badgerBackend.RunGC, logger))
	}

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor exited")
	}
	logger.Info().Msg("Shutdown complete")
}

// seedIndex embeds trending and popular titles into the vector index.
// Failures only reduce semantic recall, so they log and move on.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func seedIndex(ctx context.Context, index *vector.Index, embedder embedding.Provider, provider media.Provider, logger zerolog.Logger) {
	var items []media.Content
	seen := make(map[media.Key]bool)

	add := func(page []media.Content, err error, source string) {
		if err != nil {
			logger.Warn().Err(err).Str("source", source).Msg("Seed fetch failed")
			return
		}
		for _, c := range page {
			if seen[c.Key()] || len(items) >= seedLimit {
				continue
			}
			seen[c.Key()] = true
			items = append(items, c)
		}
	}

	trending, err := provider.Trending(ctx, media.MediaTypeAll, media.TrendingWeek)
	add(trending, err, "trending")

	for _, mt := range []media.MediaType{media.MediaTypeMovie, media.MediaTypeTV} {
		page, derr := provider.Discover(ctx, media.DiscoverFilter{
			Type:     mt,
			VotesMin: 1000,
			SortBy:   "popularity.desc",
		})
		add(page, derr, "popular "+string(mt))
	}

	vector.Seed(ctx, index, embedder, items)
}

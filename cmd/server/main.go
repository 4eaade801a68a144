// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Command server runs the Anibrain recommendation API.
//
// Startup is a strict barrier: configuration, optional artifact ingestion,
// and artifact loading all complete before the listener starts, so no
// request ever races the loading phase. A failed artifact load does not
// abort the process; the server runs degraded, answering every
// recommendation with an empty list and failing readiness checks, so the
// deployment surfaces the broken artifact volume instead of crash-looping.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anibrain/anibrain/internal/api"
	"github.com/anibrain/anibrain/internal/artifacts"
	"github.com/anibrain/anibrain/internal/catalog"
	"github.com/anibrain/anibrain/internal/config"
	"github.com/anibrain/anibrain/internal/ingest"
	"github.com/anibrain/anibrain/internal/logging"
	"github.com/anibrain/anibrain/internal/recommend"
	"github.com/anibrain/anibrain/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("artifacts_dir", cfg.Artifacts.Dir).
		Int("port", cfg.Server.Port).
		Msg("starting anibrain server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Ingest.Enabled {
		if err := runIngest(ctx, cfg); err != nil {
			return err
		}
	}

	store, cat := loadArtifacts(ctx, cfg.Artifacts.Dir)

	engine := recommend.NewEngine(recommend.Config{
		DefaultN:        cfg.Recommend.DefaultN,
		MaxN:            cfg.Recommend.MaxN,
		UserWeight:      cfg.Recommend.UserWeight,
		ContentWeight:   cfg.Recommend.ContentWeight,
		SimilarUserPool: cfg.Recommend.SimilarUserPool,
		CacheTTL:        cfg.Recommend.CacheTTL,
		CacheSize:       cfg.Recommend.CacheSize,
	}, store, cat)

	router := api.NewRouter(api.NewHandler(engine, store), api.RouterConfig{
		RateLimitRequests: cfg.API.RateLimitReqs,
		RateLimitWindow:   cfg.API.RateLimitWindow,
		CORSOrigins:       cfg.API.CORSOrigins,
		RequestTimeout:    cfg.API.RequestTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.Add(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("serving")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within timeout")
		}
	}
	logging.Info().Msg("shutdown complete")
	return nil
}

// runIngest downloads the artifact set from GCS. Failure is fatal: loading
// would find the directory incomplete anyway, and the operator asked for
// ingestion explicitly.
func runIngest(ctx context.Context, cfg *config.Config) error {
	dl, err := ingest.NewDownloader(ctx, ingest.Options{
		Bucket:    cfg.Ingest.Bucket,
		Objects:   cfg.Ingest.Objects,
		Dir:       cfg.Artifacts.Dir,
		Timeout:   cfg.Ingest.Timeout,
		Anonymous: cfg.Ingest.Anonymous,
	})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	defer dl.Close()
	if err := dl.Run(ctx); err != nil {
		return err
	}
	return nil
}

// loadArtifacts loads the embedding store and catalog, falling back to an
// empty degraded pair when required artifacts are missing.
func loadArtifacts(ctx context.Context, dir string) (*artifacts.Store, *catalog.Catalog) {
	store, err := artifacts.Load(dir)
	if err != nil {
		logging.Error().Err(err).Str("dir", dir).Msg("artifact load failed, serving degraded")
		return artifacts.NewDegraded(), catalog.New(nil, nil, nil)
	}

	cat, err := catalog.Load(ctx, dir)
	if err != nil {
		logging.Error().Err(err).Str("dir", dir).Msg("catalog load failed, serving degraded")
		return artifacts.NewDegraded(), catalog.New(nil, nil, nil)
	}

	logging.Info().
		Int("anime", cat.AnimeCount()).
		Int("users", len(cat.UserIDs())).
		Msg("artifacts loaded")
	return store, cat
}

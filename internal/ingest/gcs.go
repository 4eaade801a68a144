// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package ingest downloads the offline training artifacts (embedding blobs
// and catalog CSVs) from a Google Cloud Storage bucket into the local
// artifacts directory before the server loads them. Ingestion is a one-shot
// startup step, not a background sync: the server never mutates artifacts
// after loading.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/api/option"

	"github.com/anibrain/anibrain/internal/logging"
)

// Options configures a Downloader.
type Options struct {
	// Bucket is the GCS bucket holding the artifacts.
	Bucket string

	// Objects are the object names to fetch. Each is written to Dir under
	// its base name.
	Objects []string

	// Dir is the local destination directory, created if absent.
	Dir string

	// Timeout bounds each individual object download.
	Timeout time.Duration

	// Anonymous disables credential lookup for public buckets.
	Anonymous bool
}

// Downloader fetches artifact objects from GCS. Downloads run through a
// circuit breaker so a dead bucket fails fast instead of timing out once
// per object.
type Downloader struct {
	opts    Options
	client  *storage.Client
	breaker *gobreaker.CircuitBreaker[int64]
}

// NewDownloader builds a downloader and its storage client.
func NewDownloader(ctx context.Context, opts Options) (*Downloader, error) {
	if opts.Bucket == "" {
		return nil, errors.New("ingest: bucket name required")
	}
	if len(opts.Objects) == 0 {
		return nil, errors.New("ingest: no objects to fetch")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	var clientOpts []option.ClientOption
	if opts.Anonymous {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("ingest: create storage client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:    "gcs-ingest",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("component", "ingest").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Downloader{opts: opts, client: client, breaker: breaker}, nil
}

// Close releases the storage client.
func (d *Downloader) Close() error {
	return d.client.Close()
}

// Run downloads every configured object. The first failure aborts the run:
// a partial artifact set would fail validation at load time anyway, so
// there is no point continuing.
func (d *Downloader) Run(ctx context.Context) error {
	if err := os.MkdirAll(d.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("ingest: create artifacts dir: %w", err)
	}

	log := logging.Logger().With().Str("component", "ingest").Str("bucket", d.opts.Bucket).Logger()
	start := time.Now()
	for _, object := range d.opts.Objects {
		n, err := d.breaker.Execute(func() (int64, error) {
			return d.fetch(ctx, object)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return fmt.Errorf("ingest: bucket unreachable, giving up on %q: %w", object, err)
			}
			return fmt.Errorf("ingest: fetch %q: %w", object, err)
		}
		log.Info().Str("object", object).Int64("bytes", n).Msg("artifact downloaded")
	}
	log.Info().Int("objects", len(d.opts.Objects)).Dur("elapsed", time.Since(start)).Msg("ingest complete")
	return nil
}

// fetch streams one object to a temp file and renames it into place, so a
// torn download never leaves a truncated artifact behind.
func (d *Downloader) fetch(ctx context.Context, object string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	reader, err := d.client.Bucket(d.opts.Bucket).Object(object).NewReader(ctx)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	dest := filepath.Join(d.opts.Dir, filepath.Base(object))
	tmp, err := os.CreateTemp(d.opts.Dir, ".ingest-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, err
	}
	return n, nil
}

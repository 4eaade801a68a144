// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/anibrain/anibrain/internal/artifacts"
	"github.com/anibrain/anibrain/internal/logging"
	"github.com/anibrain/anibrain/internal/metrics"
)

// CSV artifact file names within the artifacts directory.
const (
	AnimeCSV    = "anime.csv"
	RatingsCSV  = "ratings.csv"
	SynopsisCSV = "synopsis.csv"
)

// Load ingests the tabular artifacts from dir through an in-memory DuckDB
// connection. The anime and rating tables are required; a missing synopsis
// table degrades to an empty one, since synopses are presentation-only.
func Load(ctx context.Context, dir string) (*Catalog, error) {
	conn, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing duckdb ingest connection")
		}
	}()

	anime, err := loadAnime(ctx, conn, filepath.Join(dir, AnimeCSV))
	if err != nil {
		return nil, err
	}

	ratings, err := loadRatings(ctx, conn, filepath.Join(dir, RatingsCSV))
	if err != nil {
		return nil, err
	}

	synopsis, err := loadSynopsis(ctx, conn, filepath.Join(dir, SynopsisCSV))
	if err != nil {
		// Independently loadable: the rest of the catalog stays valid.
		logging.Warn().Err(err).Msg("synopsis table unavailable, continuing without it")
		synopsis = map[int]string{}
	}

	metrics.CatalogRows.WithLabelValues("anime").Set(float64(len(anime)))
	metrics.CatalogRows.WithLabelValues("ratings").Set(float64(len(ratings)))
	metrics.CatalogRows.WithLabelValues("synopsis").Set(float64(len(synopsis)))

	return New(anime, ratings, synopsis), nil
}

func loadAnime(ctx context.Context, conn *sql.DB, path string) ([]Anime, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", artifacts.ErrArtifactMissing, path, err)
	}

	query := fmt.Sprintf(
		`SELECT anime_id, name, genres FROM read_csv_auto(%s, header=true)`,
		quoteLiteral(path))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", artifacts.ErrArtifactMissing, path, err)
	}
	defer rows.Close()

	var out []Anime
	for rows.Next() {
		var a Anime
		var name, genres sql.NullString
		if err := rows.Scan(&a.ID, &name, &genres); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		a.Name = name.String
		a.Genres = genres.String
		if a.Name == "" {
			// Rows without a display name cannot be recommended by name.
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func loadRatings(ctx context.Context, conn *sql.DB, path string) ([]Rating, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", artifacts.ErrArtifactMissing, path, err)
	}

	query := fmt.Sprintf(
		`SELECT user_id, anime_id, rating FROM read_csv_auto(%s, header=true)`,
		quoteLiteral(path))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", artifacts.ErrArtifactMissing, path, err)
	}
	defer rows.Close()

	var out []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.UserID, &r.AnimeID, &r.Score); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func loadSynopsis(ctx context.Context, conn *sql.DB, path string) (map[int]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("synopsis table: %s: %w", path, err)
	}

	query := fmt.Sprintf(
		`SELECT anime_id, synopsis FROM read_csv_auto(%s, header=true)`,
		quoteLiteral(path))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("synopsis table: %s: %w", path, err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var id int
		var text sql.NullString
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		if text.Valid && text.String != "" {
			out[id] = text.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// quoteLiteral renders a string as a single-quoted SQL literal. Paths come
// from configuration, not request input, but DuckDB's read_csv_auto cannot
// take a bind parameter for the file name.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anibrain/anibrain/internal/artifacts"
)

func writeCSVFixture(t *testing.T, dir string, withSynopsis bool) {
	t.Helper()
	files := map[string]string{
		AnimeCSV: "anime_id,name,genres\n" +
			"1,Naruto,\"Action, Shounen\"\n" +
			"2,Bleach,Action\n" +
			"3,,Orphan row without a name\n",
		RatingsCSV: "user_id,anime_id,rating\n" +
			"1980,1,1.0\n" +
			"1980,2,0.9\n" +
			"2000,2,0.5\n",
	}
	if withSynopsis {
		files[SynopsisCSV] = "anime_id,synopsis\n" +
			"1,A young ninja seeks recognition.\n" +
			"2,\n"
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoadFromCSV(t *testing.T) {
	dir := t.TempDir()
	writeCSVFixture(t, dir, true)

	cat, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The nameless row is dropped.
	if got := cat.AnimeCount(); got != 2 {
		t.Errorf("AnimeCount = %d, want 2", got)
	}
	a, ok := cat.Resolve(ByName("naruto"))
	if !ok || a.ID != 1 || a.Genres != "Action, Shounen" {
		t.Errorf("Resolve(naruto) = (%+v, %v)", a, ok)
	}

	ratings := cat.UserRatings(1980)
	if len(ratings) != 2 || ratings[0].Score != 1.0 {
		t.Errorf("UserRatings(1980) = %v", ratings)
	}
	ids := cat.UserIDs()
	if len(ids) != 2 || ids[0] != 1980 || ids[1] != 2000 {
		t.Errorf("UserIDs = %v, want [1980 2000]", ids)
	}

	if got := cat.Synopsis(1); got != "A young ninja seeks recognition." {
		t.Errorf("Synopsis(1) = %q", got)
	}
	// Empty synopsis cells fall back to the sentinel.
	if got := cat.Synopsis(2); got != SynopsisUnavailable {
		t.Errorf("Synopsis(2) = %q, want sentinel", got)
	}
}

func TestLoadMissingSynopsisDegrades(t *testing.T) {
	dir := t.TempDir()
	writeCSVFixture(t, dir, false)

	cat, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load without synopsis.csv: %v", err)
	}
	if got := cat.Synopsis(1); got != SynopsisUnavailable {
		t.Errorf("Synopsis(1) = %q, want sentinel", got)
	}
}

func TestLoadMissingRequiredTable(t *testing.T) {
	for _, required := range []string{AnimeCSV, RatingsCSV} {
		t.Run(required, func(t *testing.T) {
			dir := t.TempDir()
			writeCSVFixture(t, dir, false)
			if err := os.Remove(filepath.Join(dir, required)); err != nil {
				t.Fatal(err)
			}

			_, err := Load(context.Background(), dir)
			if !errors.Is(err, artifacts.ErrArtifactMissing) {
				t.Errorf("Load = %v, want ErrArtifactMissing", err)
			}
		})
	}
}

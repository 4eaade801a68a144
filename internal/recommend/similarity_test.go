// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package recommend

import (
	"testing"

	"github.com/anibrain/anibrain/internal/artifacts"
	"github.com/anibrain/anibrain/internal/catalog"
)

func TestSimilarAnimeRanksByInnerProduct(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	got := names(SimilarAnime(space, cat, catalog.ByName("Naruto"), 3, false))
	want := []string{"Bleach", "One Piece", "Clannad"}
	if !equalStrings(got, want) {
		t.Errorf("SimilarAnime(Naruto, 3) = %v, want %v", got, want)
	}
}

func TestSimilarAnimeCarriesSynopsis(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	results := SimilarAnime(space, cat, catalog.ByName("Bleach"), 2, false)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Name != "Naruto" || results[0].Synopsis != "A young ninja seeks recognition." {
		t.Errorf("first = %q/%q, want Naruto with its synopsis", results[0].Name, results[0].Synopsis)
	}
	if results[1].Synopsis != catalog.SynopsisUnavailable {
		t.Errorf("second synopsis = %q, want sentinel for missing row", results[1].Synopsis)
	}
}

func TestSimilarAnimeByIDMatchesByName(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	byName := names(SimilarAnime(space, cat, catalog.ByName("Naruto"), 3, false))
	byID := names(SimilarAnime(space, cat, catalog.ByID(1), 3, false))
	if !equalStrings(byName, byID) {
		t.Errorf("ByName = %v, ByID = %v", byName, byID)
	}
}

func TestSimilarAnimeExcludesQuery(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	results := SimilarAnime(space, cat, catalog.ByName("Naruto"), 10, false)
	if len(results) > 5 {
		t.Errorf("got %d results from a 6-anime space, want at most 5", len(results))
	}
	for _, nb := range results {
		if nb.Name == "Naruto" {
			t.Error("query anime appeared in its own results")
		}
	}
}

func TestSimilarAnimeNoDuplicates(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	results := SimilarAnime(space, cat, catalog.ByName("Naruto"), 10, false)
	seen := make(map[int]bool)
	for _, nb := range results {
		if seen[nb.ID] {
			t.Errorf("duplicate id %d in results", nb.ID)
		}
		seen[nb.ID] = true
	}
}

func TestSimilarAnimeUnknownQuery(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	cases := []catalog.Query{
		catalog.ByName("ZzzNotARealAnime"),
		catalog.ByID(999999),
	}
	for _, q := range cases {
		if got := SimilarAnime(space, cat, q, 3, false); len(got) != 0 {
			t.Errorf("SimilarAnime(%s) = %v, want empty", q.String(), got)
		}
	}
}

func TestSimilarAnimeLeastSimilar(t *testing.T) {
	space := testAnimeSpace(t)
	cat := testCatalog()

	// The farthest selection is still walked in descending similarity.
	got := names(SimilarAnime(space, cat, catalog.ByName("Naruto"), 2, true))
	want := []string{"Clannad", "Monster"}
	if !equalStrings(got, want) {
		t.Errorf("least similar = %v, want %v", got, want)
	}
}

func TestSimilarAnimeSkipsUnresolvableCandidates(t *testing.T) {
	// Anime 99 has an embedding but no catalog entry. Ranking selects n+1
	// candidates up front, so the skip shrinks the result instead of pulling
	// in a replacement.
	weights := [][]float64{
		{1.0, 0.0},   // 1 Naruto
		{0.95, 0.05}, // 99, no metadata
		{0.9, 0.1},   // 2 Bleach
		{0.8, 0.2},   // 3 One Piece
	}
	encoded := map[int]int{1: 0, 99: 1, 2: 2, 3: 3}
	decoded := map[int]int{0: 1, 1: 99, 2: 2, 3: 3}
	space, err := artifacts.NewSpace(weights, encoded, decoded)
	if err != nil {
		t.Fatalf("build space: %v", err)
	}
	cat := testCatalog()

	got := names(SimilarAnime(space, cat, catalog.ByName("Naruto"), 2, false))
	want := []string{"Bleach"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSimilarUsersRanking(t *testing.T) {
	space := testUserSpace(t)

	results := SimilarUsers(space, 1980, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != 2000 || results[1].ID != 2100 {
		t.Errorf("got users [%d %d], want [2000 2100]", results[0].ID, results[1].ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results not ordered by descending similarity")
	}
}

func TestSimilarUsersExcludesSelf(t *testing.T) {
	space := testUserSpace(t)

	for _, nb := range SimilarUsers(space, 1980, 10) {
		if nb.ID == 1980 {
			t.Error("target user appeared in its own results")
		}
	}
}

func TestSimilarUsersUnknownUser(t *testing.T) {
	space := testUserSpace(t)

	if got := SimilarUsers(space, 424242, 3); len(got) != 0 {
		t.Errorf("SimilarUsers(unknown) = %v, want empty", got)
	}
}

func TestSimilarUsersDegradedSpace(t *testing.T) {
	store := artifacts.NewDegraded()

	if got := SimilarUsers(store.User(), 1980, 3); len(got) != 0 {
		t.Errorf("degraded space returned %v, want empty", got)
	}
}

func TestRankRowsZeroN(t *testing.T) {
	space := testAnimeSpace(t)

	if got := rankRows(space, 0, 0, false); got != nil {
		t.Errorf("rankRows with n=0 = %v, want nil", got)
	}
}

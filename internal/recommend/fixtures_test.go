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

// The test universe: six anime in a 2-dimensional embedding space where
// inner products against "Naruto" [1,0] rank Bleach > One Piece > Clannad >
// Monster > Death Note, and four users where 2000 and 2100 sit closest to
// user 1980. "ZzzNotARealAnime" exists nowhere.
func testCatalog() *catalog.Catalog {
	anime := []catalog.Anime{
		{ID: 1, Name: "Naruto", Genres: "Action, Shounen"},
		{ID: 2, Name: "Bleach", Genres: "Action, Shounen"},
		{ID: 3, Name: "One Piece", Genres: "Action, Adventure"},
		{ID: 4, Name: "Death Note", Genres: "Thriller"},
		{ID: 5, Name: "Monster", Genres: "Thriller"},
		{ID: 6, Name: "Clannad", Genres: "Drama"},
	}
	ratings := []catalog.Rating{
		{UserID: 1980, AnimeID: 1, Score: 1.0},
		{UserID: 1980, AnimeID: 2, Score: 0.9},
		{UserID: 1980, AnimeID: 4, Score: 0.2},

		{UserID: 2000, AnimeID: 2, Score: 1.0},
		{UserID: 2000, AnimeID: 3, Score: 1.0},
		{UserID: 2000, AnimeID: 1, Score: 0.5},

		{UserID: 2100, AnimeID: 3, Score: 1.0},
		{UserID: 2100, AnimeID: 5, Score: 0.9},
		{UserID: 2100, AnimeID: 6, Score: 0.8},

		{UserID: 2200, AnimeID: 4, Score: 1.0},
	}
	synopsis := map[int]string{
		1: "A young ninja seeks recognition.",
	}
	return catalog.New(anime, ratings, synopsis)
}

func testAnimeSpace(t *testing.T) *artifacts.Space {
	t.Helper()
	weights := [][]float64{
		{1.0, 0.0}, // 1 Naruto
		{0.9, 0.1}, // 2 Bleach
		{0.8, 0.2}, // 3 One Piece
		{0.0, 1.0}, // 4 Death Note
		{0.1, 0.9}, // 5 Monster
		{0.5, 0.5}, // 6 Clannad
	}
	encoded := map[int]int{1: 0, 2: 1, 3: 2, 4: 3, 5: 4, 6: 5}
	decoded := map[int]int{0: 1, 1: 2, 2: 3, 3: 4, 4: 5, 5: 6}
	space, err := artifacts.NewSpace(weights, encoded, decoded)
	if err != nil {
		t.Fatalf("build anime space: %v", err)
	}
	return space
}

func testUserSpace(t *testing.T) *artifacts.Space {
	t.Helper()
	weights := [][]float64{
		{1.0, 0.0}, // 1980
		{0.9, 0.1}, // 2000
		{0.8, 0.2}, // 2100
		{0.0, 1.0}, // 2200
	}
	encoded := map[int]int{1980: 0, 2000: 1, 2100: 2, 2200: 3}
	decoded := map[int]int{0: 1980, 1: 2000, 2: 2100, 3: 2200}
	space, err := artifacts.NewSpace(weights, encoded, decoded)
	if err != nil {
		t.Fatalf("build user space: %v", err)
	}
	return space
}

func testStore(t *testing.T) *artifacts.Store {
	t.Helper()
	return artifacts.NewStore(testAnimeSpace(t), testUserSpace(t))
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(Config{}, testStore(t), testCatalog())
}

func names(neighbors []Neighbor) []string {
	out := make([]string, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package recommend

import (
	"sort"

	"github.com/anibrain/anibrain/internal/artifacts"
	"github.com/anibrain/anibrain/internal/catalog"
)

// dot returns the inner product of two vectors. Mismatched lengths are
// truncated to the shorter vector; artifact validation makes the matrices
// rectangular so this only matters for hand-built test fixtures.
func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}

// rankRows scores every row of the space by inner product against the query
// row and returns up to n+1 candidate rows ordered most-similar first. The
// query row itself ranks highest and is among the returned rows; callers
// skip it during collection. With least set, the n+1 farthest rows are
// returned instead, still ordered by descending similarity within the
// selection. Ties rank by row index, so results are stable across runs.
func rankRows(space *artifacts.Space, queryRow, n int, least bool) []int {
	total := space.Len()
	if total == 0 || n <= 0 {
		return nil
	}
	qv := space.Vector(queryRow)
	if qv == nil {
		return nil
	}

	sims := make([]float64, total)
	order := make([]int, total)
	for row := 0; row < total; row++ {
		sims[row] = dot(space.Vector(row), qv)
		order[row] = row
	}
	sort.SliceStable(order, func(i, j int) bool {
		return sims[order[i]] < sims[order[j]]
	})

	k := n + 1
	if k > total {
		k = total
	}
	var sel []int
	if least {
		sel = order[:k]
	} else {
		sel = order[total-k:]
	}

	// sel is ascending by similarity; reverse so callers walk best-first.
	out := make([]int, len(sel))
	for i, row := range sel {
		out[len(sel)-1-i] = row
	}
	return out
}

// SimilarUsers returns up to n users whose embeddings are closest to userID,
// most similar first. The target user is excluded. An unknown user or a
// degraded space yields an empty slice.
func SimilarUsers(space *artifacts.Space, userID, n int) []Neighbor {
	queryRow, ok := space.Encode(userID)
	if !ok {
		return nil
	}
	qv := space.Vector(queryRow)

	out := make([]Neighbor, 0, n)
	seen := make(map[int]struct{}, n)
	for _, row := range rankRows(space, queryRow, n, false) {
		id, ok := space.Decode(row)
		if !ok {
			continue
		}
		if id == userID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Neighbor{ID: id, Similarity: dot(space.Vector(row), qv)})
		if len(out) == n {
			break
		}
	}
	return out
}

// SimilarAnime resolves q in the catalog and returns up to n anime whose
// embeddings are closest to it, most similar first and enriched with
// metadata and synopsis. With least set, the farthest anime are returned
// instead.
// Candidates that cannot be decoded or resolved are skipped; an unknown
// query yields an empty slice.
func SimilarAnime(space *artifacts.Space, cat *catalog.Catalog, q catalog.Query, n int, least bool) []Neighbor {
	target, ok := cat.Resolve(q)
	if !ok {
		return nil
	}
	queryRow, ok := space.Encode(target.ID)
	if !ok {
		return nil
	}
	qv := space.Vector(queryRow)

	out := make([]Neighbor, 0, n)
	seen := make(map[int]struct{}, n)
	for _, row := range rankRows(space, queryRow, n, least) {
		id, ok := space.Decode(row)
		if !ok {
			continue
		}
		if id == target.ID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		meta, ok := cat.Resolve(catalog.ByID(id))
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Neighbor{
			ID:         id,
			Similarity: dot(space.Vector(row), qv),
			Name:       meta.Name,
			Genres:     meta.Genres,
			Synopsis:   cat.Synopsis(id),
		})
		if len(out) == n {
			break
		}
	}
	return out
}

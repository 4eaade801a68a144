// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package recommend

import (
	"errors"
	"math"
	"sort"

	"github.com/anibrain/anibrain/internal/catalog"
)

// preferencePercentile is the rating percentile above which a user's rated
// anime count as liked.
const preferencePercentile = 75.0

var errEmptySample = errors.New("empty sample")

// percentile computes the p-th percentile of values with linear
// interpolation between the two nearest order statistics. values is
// copied before sorting.
func percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, errEmptySample
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, nil
}

// mean returns the arithmetic mean of values.
func mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errEmptySample
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// likeThreshold picks the rating cutoff for a user's history. With more than
// one distinct rating the cutoff is the 75th percentile; with a single
// distinct rating that value is the cutoff, so the whole history qualifies.
// The mean is the fallback if the percentile cannot be computed.
func likeThreshold(scores []float64) (float64, error) {
	distinct := make(map[float64]struct{}, len(scores))
	for _, s := range scores {
		distinct[s] = struct{}{}
	}
	if len(distinct) == 1 {
		for s := range distinct {
			return s, nil
		}
	}
	t, err := percentile(scores, preferencePercentile)
	if err != nil {
		return mean(scores)
	}
	return t, nil
}

// UserPreferences derives the anime a user is assumed to like: ratings at or
// above the user's like threshold, resolved to metadata, deduplicated by
// name, ordered by descending rating. Rating ties keep the catalog's row
// order. Users with no ratings, or whose liked anime all fail to resolve,
// yield an empty slice.
func UserPreferences(cat *catalog.Catalog, userID int) []Preference {
	ratings := cat.UserRatings(userID)
	if len(ratings) == 0 {
		return nil
	}

	scores := make([]float64, len(ratings))
	for i, r := range ratings {
		scores[i] = r.Score
	}
	threshold, err := likeThreshold(scores)
	if err != nil {
		return nil
	}

	liked := make([]catalog.Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.Score >= threshold {
			liked = append(liked, r)
		}
	}
	sort.SliceStable(liked, func(i, j int) bool {
		return liked[i].Score > liked[j].Score
	})

	out := make([]Preference, 0, len(liked))
	seen := make(map[string]struct{}, len(liked))
	for _, r := range liked {
		meta, ok := cat.Resolve(catalog.ByID(r.AnimeID))
		if !ok {
			continue
		}
		if _, dup := seen[meta.Name]; dup {
			continue
		}
		seen[meta.Name] = struct{}{}
		out = append(out, Preference{Name: meta.Name, Genres: meta.Genres})
	}
	return out
}

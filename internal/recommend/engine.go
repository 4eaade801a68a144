// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/anibrain/anibrain/internal/artifacts"
	"github.com/anibrain/anibrain/internal/cache"
	"github.com/anibrain/anibrain/internal/catalog"
	"github.com/anibrain/anibrain/internal/logging"
	"github.com/anibrain/anibrain/internal/metrics"
)

// Engine serves hybrid and similar-anime recommendations over an embedding
// store and a catalog. All fields are read-only after construction except
// the response cache, so an Engine is safe for concurrent use.
type Engine struct {
	cfg     Config
	store   *artifacts.Store
	catalog *catalog.Catalog
	cache   *cache.LRU
	logger  zerolog.Logger
}

// NewEngine builds an engine. Zero Config fields take package defaults.
func NewEngine(cfg Config, store *artifacts.Store, cat *catalog.Catalog) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:     cfg,
		store:   store,
		catalog: cat,
		cache:   cache.NewLRU(cfg.CacheSize, cfg.CacheTTL),
		logger:  logging.Logger().With().Str("component", "recommend").Logger(),
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// clampN normalizes a requested result count.
func (e *Engine) clampN(n int) int {
	if n <= 0 {
		return e.cfg.DefaultN
	}
	if n > e.cfg.MaxN {
		return e.cfg.MaxN
	}
	return n
}

// UserIDs returns the sorted IDs of all users with rating history.
func (e *Engine) UserIDs() []int {
	return e.catalog.UserIDs()
}

// SimilarAnime returns up to n anime nearest to the anime named by q,
// most similar first. Unknown anime yield an empty slice.
func (e *Engine) SimilarAnime(ctx context.Context, q catalog.Query, n int) []Neighbor {
	n = e.clampN(n)
	start := time.Now()
	results := SimilarAnime(e.store.Anime(), e.catalog, q, n, false)
	metrics.RecordRecommendation("anime", len(results), time.Since(start))

	if len(results) == 0 {
		logger := logging.Ctx(ctx)
		logger.Debug().
			Str("component", "recommend").
			Str("query", q.String()).
			Msg("similar anime search returned no results")
	}
	return results
}

// RecommendForUser returns up to n anime names for userID by fusing
// collaborative and content candidates under the given branch weights.
// Negative weights fall back to the configured defaults. Unknown users
// yield an empty slice, never an error.
func (e *Engine) RecommendForUser(ctx context.Context, userID, n int, userWeight, contentWeight float64) []string {
	n = e.clampN(n)
	if userWeight < 0 {
		userWeight = e.cfg.UserWeight
	}
	if contentWeight < 0 {
		contentWeight = e.cfg.ContentWeight
	}

	key := fmt.Sprintf("user:%d:%d:%g:%g", userID, n, userWeight, contentWeight)
	if hit, ok := e.cache.Get(key); ok {
		metrics.CacheHits.Inc()
		return hit
	}
	metrics.CacheMisses.Inc()

	start := time.Now()
	own := UserPreferences(e.catalog, userID)
	ownNames := make(map[string]struct{}, len(own))
	for _, p := range own {
		ownNames[p.Name] = struct{}{}
	}

	collaborative := e.collaborativeCandidates(userID, n, ownNames)
	content := e.contentCandidates(own, n, ownNames)

	scores := newOrderedScores()
	for _, name := range collaborative {
		scores.add(name, userWeight)
	}
	for _, name := range content {
		scores.add(name, contentWeight)
	}
	for name := range ownNames {
		scores.remove(name)
	}
	names := scores.top(n)

	metrics.RecordRecommendation("user", len(names), time.Since(start))
	e.logger.Debug().
		Int("user_id", userID).
		Int("collaborative", len(collaborative)).
		Int("content", len(content)).
		Int("results", len(names)).
		Msg("hybrid recommendation computed")

	e.cache.Add(key, names)
	return names
}

// collaborativeCandidates pools the preferences of users embedded near
// userID, excluding the target's own preferences, and returns the most
// frequently liked names, capped at 2n. Names are ordered by vote count,
// with first appearance in the pool breaking ties. Names that no longer
// resolve in the catalog are dropped.
func (e *Engine) collaborativeCandidates(userID, n int, own map[string]struct{}) []string {
	neighbors := SimilarUsers(e.store.User(), userID, e.cfg.SimilarUserPool)
	if len(neighbors) == 0 {
		return nil
	}

	votes := make(map[string]int)
	var order []string
	for _, nb := range neighbors {
		for _, p := range UserPreferences(e.catalog, nb.ID) {
			if _, mine := own[p.Name]; mine {
				continue
			}
			if _, seen := votes[p.Name]; !seen {
				order = append(order, p.Name)
			}
			votes[p.Name]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return votes[order[i]] > votes[order[j]]
	})
	if limit := 2 * n; len(order) > limit {
		order = order[:limit]
	}

	out := order[:0]
	for _, name := range order {
		if _, ok := e.catalog.Resolve(catalog.ByName(name)); !ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// contentCandidates searches the anime space around the target user's top n
// preferences and pools the neighbors, skipping anime the user already
// likes. Order follows the preference walk, deduplicated first-wins.
func (e *Engine) contentCandidates(own []Preference, n int, ownNames map[string]struct{}) []string {
	seeds := own
	if len(seeds) > n {
		seeds = seeds[:n]
	}

	var out []string
	seen := make(map[string]struct{})
	for _, p := range seeds {
		for _, nb := range SimilarAnime(e.store.Anime(), e.catalog, catalog.ByName(p.Name), n, false) {
			if _, mine := ownNames[nb.Name]; mine {
				continue
			}
			if _, dup := seen[nb.Name]; dup {
				continue
			}
			seen[nb.Name] = struct{}{}
			out = append(out, nb.Name)
		}
	}
	return out
}

// orderedScores is an insertion-ordered score accumulator. Iteration and
// ranking never touch map order, so fusion output is deterministic: equal
// scores rank by first insertion.
type orderedScores struct {
	order  []string
	scores map[string]float64
}

func newOrderedScores() *orderedScores {
	return &orderedScores{scores: make(map[string]float64)}
}

func (s *orderedScores) add(name string, weight float64) {
	if _, ok := s.scores[name]; !ok {
		s.order = append(s.order, name)
	}
	s.scores[name] += weight
}

func (s *orderedScores) remove(name string) {
	if _, ok := s.scores[name]; !ok {
		return
	}
	delete(s.scores, name)
	for i, existing := range s.order {
		if existing == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// top returns up to n names by descending score, insertion order on ties.
func (s *orderedScores) top(n int) []string {
	ranked := make([]string, len(s.order))
	copy(ranked, s.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.scores[ranked[i]] > s.scores[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

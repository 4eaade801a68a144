// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package recommend implements the hybrid recommendation core: embedding
// nearest-neighbor search, rating-based preference extraction, and weighted
// rank fusion of collaborative and content candidates.
//
// # Pipeline
//
// A hybrid request for a user runs:
//
//	Resolve -> CollaborativeCandidates -> ContentCandidates -> Fuse -> Truncate
//
// The collaborative branch finds users with nearby embeddings and pools the
// anime they like; the content branch finds anime with embeddings near the
// target user's own favorites. Fusion scores each candidate name additively
// by branch weight and returns the top names.
//
// # Failure policy
//
// Every stage degrades to "no contribution" on missing data: unknown
// entities, unresolvable candidates, and empty preference sets all shrink
// the result instead of failing the request. Callers always receive a list,
// possibly empty. Only an artifact loading failure upstream of this package
// is fatal, and it manifests here as a degraded store whose lookups are
// all empty.
//
// # Concurrency
//
// All inputs are immutable after startup, so the engine performs lock-free
// read-only computation per request; the response cache is the only
// synchronized state. Identical requests against an unchanged store return
// identical ordered lists.
package recommend

// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

package recommend

// Neighbor is one nearest-neighbor search result: an entity ID with its
// similarity score against the query, plus display metadata when the search
// ran over the anime space. Higher Similarity means closer.
type Neighbor struct {
	ID         int     `json:"id"`
	Similarity float64 `json:"similarity"`
	Name       string  `json:"name,omitempty"`
	Genres     string  `json:"genres,omitempty"`
	Synopsis   string  `json:"synopsis,omitempty"`
}

// Preference is one anime a user is assumed to like, derived from their
// rating history. Preferences carry names rather than IDs because the
// fusion stage keys candidates by canonical name.
type Preference struct {
	Name   string
	Genres string
}

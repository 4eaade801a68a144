// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package catalog holds the read-only tabular artifacts: the anime metadata
// table, the synopsis table, and the rating history. Tables are ingested
// once at startup through an in-memory DuckDB connection and served from
// plain in-process structures afterwards; request-time lookups never touch
// the database.
package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// SynopsisUnavailable is returned when no synopsis exists for an anime.
// A missing synopsis is never an error.
const SynopsisUnavailable = "Synopsis not available."

// Anime is one row of the metadata table.
type Anime struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Genres string `json:"genres"`
}

// Rating is one historical user-anime interaction. Score is scaled to
// [0,1] by the offline processing stage.
type Rating struct {
	UserID  int
	AnimeID int
	Score   float64
}

// Query addresses an anime either by external id or by display name.
// Name matches are case-insensitive and exact.
type Query struct {
	id   int
	name string
	byID bool
}

// ByID builds a query for an external anime id.
func ByID(id int) Query {
	return Query{id: id, byID: true}
}

// ByName builds a query for a display name.
func ByName(name string) Query {
	return Query{name: name}
}

// ParseQuery interprets raw user input: an all-digit string is an id,
// anything else a name.
func ParseQuery(raw string) Query {
	if id, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return ByID(id)
	}
	return ByName(strings.TrimSpace(raw))
}

// String renders the query for logging.
func (q Query) String() string {
	if q.byID {
		return strconv.Itoa(q.id)
	}
	return q.name
}

// Catalog is the immutable in-memory view of the tabular artifacts.
type Catalog struct {
	byID          map[int]Anime
	byName        map[string]Anime
	synopsis      map[int]string
	ratingsByUser map[int][]Rating
	userIDs       []int
}

// Resolve looks up an anime by id or name. A miss reports ok=false and is
// never an error.
func (c *Catalog) Resolve(q Query) (Anime, bool) {
	if q.byID {
		a, ok := c.byID[q.id]
		return a, ok
	}
	a, ok := c.byName[strings.ToLower(q.name)]
	return a, ok
}

// Synopsis returns the synopsis text for an anime id, or the
// SynopsisUnavailable sentinel when the table or the row is missing.
func (c *Catalog) Synopsis(id int) string {
	if text, ok := c.synopsis[id]; ok && text != "" {
		return text
	}
	return SynopsisUnavailable
}

// UserRatings returns all rating rows for a user, in table order.
// Unknown users get an empty slice.
func (c *Catalog) UserRatings(userID int) []Rating {
	return c.ratingsByUser[userID]
}

// UserIDs returns a sorted copy of all user ids present in the rating table.
func (c *Catalog) UserIDs() []int {
	out := make([]int, len(c.userIDs))
	copy(out, c.userIDs)
	return out
}

// AnimeCount returns the number of metadata rows.
func (c *Catalog) AnimeCount() int {
	return len(c.byID)
}

// New builds a Catalog from already-decoded rows. Load is the production
// path; New exists for tests and tooling.
func New(anime []Anime, ratings []Rating, synopsis map[int]string) *Catalog {
	c := &Catalog{
		byID:          make(map[int]Anime, len(anime)),
		byName:        make(map[string]Anime, len(anime)),
		synopsis:      synopsis,
		ratingsByUser: make(map[int][]Rating),
	}
	if c.synopsis == nil {
		c.synopsis = map[int]string{}
	}

	for _, a := range anime {
		c.byID[a.ID] = a
		key := strings.ToLower(a.Name)
		if _, exists := c.byName[key]; !exists {
			c.byName[key] = a
		}
	}

	for _, r := range ratings {
		c.ratingsByUser[r.UserID] = append(c.ratingsByUser[r.UserID], r)
	}
	c.userIDs = make([]int, 0, len(c.ratingsByUser))
	for id := range c.ratingsByUser {
		c.userIDs = append(c.userIDs, id)
	}
	sort.Ints(c.userIDs)

	return c
}

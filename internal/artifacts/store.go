// Anibrain - Hybrid Anime Recommendation Service
// Copyright 2026 Anibrain Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/anibrain/anibrain

// Package artifacts loads the immutable embedding artifacts produced by the
// offline training pipeline: one weight matrix and one encoded/decoded id
// map pair per space (anime, user), serialized as CBOR blobs.
//
// The store is loaded once at startup and read-only afterwards. When any
// required artifact is missing or corrupt, Load fails with
// ErrArtifactMissing; the caller may then fall back to NewDegraded, whose
// spaces are empty so every downstream lookup short-circuits to an empty
// result instead of crashing the process.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/anibrain/anibrain/internal/metrics"
)

// ErrArtifactMissing indicates a required artifact failed to load.
// It is the only fatal error class in the recommendation core.
var ErrArtifactMissing = errors.New("artifact missing")

// Artifact file names within the artifacts directory.
const (
	AnimeWeightsFile = "anime_weights.cbor"
	UserWeightsFile  = "user_weights.cbor"
	AnimeEncodedFile = "anime_encoded.cbor"
	AnimeDecodedFile = "anime_decoded.cbor"
	UserEncodedFile  = "user_encoded.cbor"
	UserDecodedFile  = "user_decoded.cbor"
)

// Space holds the embedding matrix and id maps for one vector space.
// Row index is the trained, dense, zero-based encoded index; the id maps
// translate between encoded indices and external ids.
type Space struct {
	weights [][]float64
	encoded map[int]int
	decoded map[int]int
}

// NewSpace constructs a Space and verifies the artifact invariants:
// every encoded index must address a matrix row, and decoding an encoded
// id must round-trip to the original external id.
func NewSpace(weights [][]float64, encoded, decoded map[int]int) (*Space, error) {
	for id, row := range encoded {
		if row < 0 || row >= len(weights) {
			return nil, fmt.Errorf("%w: encoded index %d for id %d outside matrix of %d rows",
				ErrArtifactMissing, row, id, len(weights))
		}
		if back, ok := decoded[row]; !ok || back != id {
			return nil, fmt.Errorf("%w: id map mismatch for id %d (row %d decodes to %d)",
				ErrArtifactMissing, id, row, back)
		}
	}
	return &Space{weights: weights, encoded: encoded, decoded: decoded}, nil
}

// Len returns the number of rows in the embedding matrix.
func (s *Space) Len() int {
	return len(s.weights)
}

// Encode maps an external id to its matrix row.
// Ids outside the trained vocabulary report ok=false, never an error.
func (s *Space) Encode(externalID int) (row int, ok bool) {
	row, ok = s.encoded[externalID]
	return row, ok
}

// Decode maps a matrix row back to its external id.
func (s *Space) Decode(row int) (externalID int, ok bool) {
	externalID, ok = s.decoded[row]
	return externalID, ok
}

// Vector returns the embedding for a row, or nil when out of range.
func (s *Space) Vector(row int) []float64 {
	if row < 0 || row >= len(s.weights) {
		return nil
	}
	return s.weights[row]
}

// Store exposes the anime and user embedding spaces.
type Store struct {
	anime     *Space
	user      *Space
	available bool
}

// Load reads all six artifact blobs from dir. Every file is required;
// a missing or undecodable file yields ErrArtifactMissing.
func Load(dir string) (*Store, error) {
	animeWeights, err := readMatrix(filepath.Join(dir, AnimeWeightsFile))
	if err != nil {
		return nil, err
	}
	userWeights, err := readMatrix(filepath.Join(dir, UserWeightsFile))
	if err != nil {
		return nil, err
	}
	animeEncoded, err := readIDMap(filepath.Join(dir, AnimeEncodedFile))
	if err != nil {
		return nil, err
	}
	animeDecoded, err := readIDMap(filepath.Join(dir, AnimeDecodedFile))
	if err != nil {
		return nil, err
	}
	userEncoded, err := readIDMap(filepath.Join(dir, UserEncodedFile))
	if err != nil {
		return nil, err
	}
	userDecoded, err := readIDMap(filepath.Join(dir, UserDecodedFile))
	if err != nil {
		return nil, err
	}

	anime, err := NewSpace(animeWeights, animeEncoded, animeDecoded)
	if err != nil {
		return nil, fmt.Errorf("anime space: %w", err)
	}
	user, err := NewSpace(userWeights, userEncoded, userDecoded)
	if err != nil {
		return nil, fmt.Errorf("user space: %w", err)
	}

	metrics.ArtifactStoreAvailable.Set(1)
	metrics.EmbeddingRows.WithLabelValues("anime").Set(float64(anime.Len()))
	metrics.EmbeddingRows.WithLabelValues("user").Set(float64(user.Len()))

	return &Store{anime: anime, user: user, available: true}, nil
}

// NewStore assembles a store from prebuilt spaces. Load is the production
// path; this constructor exists for fixtures and tooling.
func NewStore(anime, user *Space) *Store {
	return &Store{anime: anime, user: user, available: true}
}

// NewDegraded returns a store whose spaces are empty. Every lookup against
// it reports "unknown entity", so the service keeps serving empty results
// after an artifact loading failure.
func NewDegraded() *Store {
	metrics.ArtifactStoreAvailable.Set(0)
	empty := &Space{encoded: map[int]int{}, decoded: map[int]int{}}
	return &Store{anime: empty, user: empty, available: false}
}

// Available reports whether the artifacts loaded successfully.
func (st *Store) Available() bool {
	return st.available
}

// Anime returns the anime embedding space.
func (st *Store) Anime() *Space {
	return st.anime
}

// User returns the user embedding space.
func (st *Store) User() *Space {
	return st.user
}

func readMatrix(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}
	var m [][]float64
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrArtifactMissing, path, err)
	}
	return m, nil
}

func readIDMap(path string) (map[int]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}
	var m map[int]int
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrArtifactMissing, path, err)
	}
	return m, nil
}

// Write serializes a value as CBOR into the artifacts directory. It is used
// by the offline export tooling and by tests to produce fixture artifacts.
func Write(dir, name string, v any) error {
	data, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

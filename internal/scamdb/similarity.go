package scamdb

import (
	"context"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/verijob/verijob/internal/logging"
)

// DuplicateThreshold is the similarity ratio at or above which a posting is
// considered a near-duplicate of a known scam.
const DuplicateThreshold = 0.85

// maxComparedPostings bounds how many stored postings one scan diffs against.
const maxComparedPostings = 200

// Similarity returns a ratio in [0,1] between two texts based on the
// Levenshtein distance of their character diff. 1 means identical.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	lev := dmp.DiffLevenshtein(diffs)

	longer := len([]rune(a))
	if lb := len([]rune(b)); lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 0
	}
	return 1 - float64(lev)/float64(longer)
}

// MatchesKnownScam reports whether text is a near-duplicate of any stored
// scam posting, and the best similarity found. Lookup failures are logged
// and reported as no match.
func (s *DB) MatchesKnownScam(ctx context.Context, text string) (bool, float64) {
	known, err := s.knownPostings(ctx, maxComparedPostings)
	if err != nil {
		s.logger.Warn("scam posting lookup failed", logging.Field{Key: "error", Value: err.Error()})
		return false, 0
	}

	best := 0.0
	for _, k := range known {
		if sim := Similarity(text, k); sim > best {
			best = sim
			if best >= DuplicateThreshold {
				return true, best
			}
		}
	}
	return false, best
}

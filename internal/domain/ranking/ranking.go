// Package ranking filters and orders scored candidates into a result.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Default ranking configuration constants.
const (
	DefaultMinSimilarity = 0.10
	DefaultTopN          = 5
)

// ErrInvalidTopN is returned when top-N is not a positive integer.
var ErrInvalidTopN = errors.New("invalid top_n")

// Outcome tells apart the ways a result can come out.
type Outcome string

// Outcomes of a ranking pass.
const (
	OutcomeMatched        Outcome = "matched"
	OutcomeNoCandidates   Outcome = "no_candidates"
	OutcomeBelowThreshold Outcome = "below_threshold"
)

// Result is an ordered, filtered and truncated list of candidates.
type Result struct {
	Candidates []model.ScoredCandidate
	Outcome    Outcome
	Reason     string
	Considered int // candidates before filtering
	Qualified  int // candidates that passed the filter, before truncation
}

// Total returns the number of candidates in the result.
func (r Result) Total() int { return len(r.Candidates) }

// Empty reports whether no candidate made it into the result.
func (r Result) Empty() bool { return len(r.Candidates) == 0 }

// Rank drops every candidate whose similarity is strictly below
// minSimilarity, orders the rest and keeps the first topN.
//
// Ordering: composite DESC, similarity DESC, rating DESC, then id ASC so that
// identical input always produces identical output.
func Rank(scored []model.ScoredCandidate, minSimilarity float64, topN int) (Result, error) {
	if topN < 1 {
		return Result{}, fmt.Errorf("%w: %d, must be at least 1", ErrInvalidTopN, topN)
	}

	res := Result{Considered: len(scored), Candidates: []model.ScoredCandidate{}}
	if len(scored) == 0 {
		res.Outcome = OutcomeNoCandidates
		res.Reason = "no freelancers available"
		return res, nil
	}

	kept := make([]model.ScoredCandidate, 0, len(scored))
	for _, c := range scored {
		if c.Similarity < minSimilarity {
			continue
		}
		kept = append(kept, c)
	}
	res.Qualified = len(kept)
	if len(kept) == 0 {
		res.Outcome = OutcomeBelowThreshold
		res.Reason = fmt.Sprintf("no freelancer reached the minimum skill match of %.0f%%", minSimilarity*100)
		return res, nil
	}

	sort.SliceStable(kept, func(i, j int) bool { return less(kept[i], kept[j]) })
	if len(kept) > topN {
		kept = kept[:topN]
	}

	res.Candidates = kept
	res.Outcome = OutcomeMatched
	res.Reason = fmt.Sprintf("%d of %d freelancers matched", res.Qualified, res.Considered)
	return res, nil
}

// less returns true if a should appear before b.
func less(a, b model.ScoredCandidate) bool {
	if a.Composite != b.Composite {
		return a.Composite > b.Composite
	}
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	if a.Record.Rating != b.Record.Rating {
		return a.Record.Rating > b.Record.Rating
	}
	return a.Record.ID < b.Record.ID
}

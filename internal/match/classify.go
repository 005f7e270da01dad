package match

import (
	"gonum.org/v1/gonum/stat"

	"github.com/splicelab/splicematch/internal/event"
)

// Class is the confidence tier assigned to an event's best match.
type Class string

const (
	ClassHigh      Class = "High_Confidence"
	ClassMedium    Class = "Medium_Confidence"
	ClassLow       Class = "Low_Confidence"
	ClassUnmatched Class = "Unmatched"
)

// Tier thresholds, inclusive lower bound, exclusive upper bound.
const (
	highThreshold   = 0.95
	mediumThreshold = 0.80
	lowThreshold    = 0.60
)

// ClassifyScore maps a best match score to its confidence tier.
// Only call with at least one candidate; zero-candidate events are
// Unmatched unconditionally, without a score.
func ClassifyScore(score float64) Class {
	switch {
	case score >= highThreshold:
		return ClassHigh
	case score >= mediumThreshold:
		return ClassMedium
	case score >= lowThreshold:
		return ClassLow
	default:
		return ClassUnmatched
	}
}

// Summary is the per-event reduction of its candidate set. Rebuilt from
// candidates on every matching run, never mutated in place.
type Summary struct {
	EventID string
	GeneID  string

	// NMatches is the count of candidates within tolerance.
	NMatches int

	// BestRefID and BestScore describe the candidate with the maximum
	// match score; ties break to the first-encountered candidate in
	// stage order. Valid only when HasBest is true.
	BestRefID string
	BestScore float64
	HasBest   bool

	// TypeConsistent reports whether any candidate has an exact type match.
	TypeConsistent bool

	Class Class
}

// Summarize reduces an event's candidates to a single summary.
// "No candidates" and "worst possible score" are distinct states: the
// former leaves BestScore undefined.
func Summarize(ev *event.SplicingEvent, candidates []Candidate) Summary {
	s := Summary{
		EventID:  ev.EventID,
		GeneID:   ev.GeneID,
		NMatches: len(candidates),
		Class:    ClassUnmatched,
	}

	if len(candidates) == 0 {
		return s
	}

	best := candidates[0]
	for _, c := range candidates {
		if c.TypeMatch {
			s.TypeConsistent = true
		}
	}
	for _, c := range candidates[1:] {
		// Strict greater keeps the first-encountered candidate on ties.
		if c.MatchScore > best.MatchScore {
			best = c
		}
	}

	s.BestRefID = best.Ref.RefEventID
	s.BestScore = best.MatchScore
	s.HasBest = true
	s.Class = ClassifyScore(best.MatchScore)

	return s
}

// Stats aggregates the full summary set. Counts reconcile exactly:
// Matched = High + Medium + Low, Unmatched = Total − Matched, and
// Unmatched covers both zero-candidate and low-score events.
type Stats struct {
	Total     int
	Matched   int
	High      int
	Medium    int
	Low       int
	Unmatched int

	// ScoredEvents counts events with at least one candidate; the score
	// moments below are undefined when it is zero.
	ScoredEvents    int
	MeanBestScore   float64
	StddevBestScore float64
}

// ComputeStats runs the reduction over the full summary set.
func ComputeStats(summaries []Summary) Stats {
	var s Stats
	var scores []float64

	for _, sum := range summaries {
		s.Total++
		switch sum.Class {
		case ClassHigh:
			s.High++
		case ClassMedium:
			s.Medium++
		case ClassLow:
			s.Low++
		default:
			s.Unmatched++
		}
		if sum.HasBest {
			scores = append(scores, sum.BestScore)
		}
	}

	s.Matched = s.High + s.Medium + s.Low
	s.ScoredEvents = len(scores)

	if len(scores) > 0 {
		s.MeanBestScore = stat.Mean(scores, nil)
	}
	if len(scores) > 1 {
		s.StddevBestScore = stat.StdDev(scores, nil)
	}

	return s
}

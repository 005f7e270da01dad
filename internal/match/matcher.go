// Package match provides cross-referencing of catalog events against a
// reference event database, with scoring and confidence classification.
package match

import (
	"go.uber.org/zap"

	"github.com/splicelab/splicematch/internal/event"
	"github.com/splicelab/splicematch/internal/merge"
	"github.com/splicelab/splicematch/internal/refdb"
)

// DefaultTolerance is the default per-endpoint coordinate tolerance in
// base pairs.
const DefaultTolerance = 5

// Candidate pairs one catalog event with one reference event that share
// a gene and the exact (chromosome, strand, type) key, with both
// endpoints within tolerance.
type Candidate struct {
	Event *event.SplicingEvent
	Ref   *event.ReferenceEvent

	// CoordinateDistance is |start−ref_start| + |end−ref_end|.
	CoordinateDistance int64

	// MatchScore is 1 − distance/(2·tolerance), in [0,1] by construction.
	// A linear proximity score, not a probability.
	MatchScore float64

	// TypeMatch records event-type equality. Always true under the exact
	// matching key; kept for auditability against future key relaxation.
	TypeMatch bool

	// ConsistencyScore is 1.0 for an exact type match, 0.5 otherwise.
	ConsistencyScore float64
}

// Matcher finds and scores reference candidates for catalog events.
// The reference database and tolerance are fixed at construction; the
// matcher itself holds no mutable state and is safe for concurrent use.
type Matcher struct {
	ref       *refdb.DB
	tolerance int64
	logger    *zap.Logger
}

// NewMatcher creates a matcher over the given reference database.
// A tolerance <= 0 means only exact coordinate matches are accepted.
func NewMatcher(db *refdb.DB, tolerance int64) *Matcher {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Matcher{ref: db, tolerance: tolerance, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and info messages.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Tolerance returns the per-endpoint tolerance in base pairs.
func (m *Matcher) Tolerance() int64 {
	return m.tolerance
}

// Match returns all candidates for one event, in reference load order
// within the gene. Two stages: a hard gene-level filter, then exact-key
// plus coordinate-tolerance scoring. A gene with no reference entries,
// or no pair within tolerance, yields a nil slice; that is a data
// outcome, not an error.
func (m *Matcher) Match(ev *event.SplicingEvent) []Candidate {
	refs := m.ref.FindByGene(ev.GeneID)
	if len(refs) == 0 {
		return nil
	}

	key := ev.Key()

	var candidates []Candidate
	for _, ref := range refs {
		if ref.Key() != key {
			continue
		}

		startDiff := abs64(ev.Start - ref.Start)
		endDiff := abs64(ev.End - ref.End)
		if startDiff > m.tolerance || endDiff > m.tolerance {
			continue
		}

		distance := startDiff + endDiff
		score := 1.0
		if m.tolerance > 0 {
			score = 1.0 - float64(distance)/float64(2*m.tolerance)
		}

		typeMatch := ev.EventType == ref.EventType
		consistency := 0.5
		if typeMatch {
			consistency = 1.0
		}

		candidates = append(candidates, Candidate{
			Event:              ev,
			Ref:                ref,
			CoordinateDistance: distance,
			MatchScore:         score,
			TypeMatch:          typeMatch,
			ConsistencyScore:   consistency,
		})
	}

	return candidates
}

// Result holds the matching output for one catalog event.
type Result struct {
	Event      *event.SplicingEvent
	Candidates []Candidate
	Summary    Summary
}

// MatchAll matches every catalog event using a pool of workers and
// returns one result per event in catalog order. Output is byte-stable
// regardless of worker count.
func (m *Matcher) MatchAll(catalog *merge.Catalog, workers int) ([]Result, error) {
	items := make(chan WorkItem, 64)

	go func() {
		defer close(items)
		for seq, ev := range catalog.Events() {
			items <- WorkItem{Seq: seq, Event: ev}
		}
	}()

	workResults := m.ParallelMatch(items, workers)

	results := make([]Result, 0, catalog.Len())
	if err := OrderedCollect(workResults, func(r WorkResult) error {
		results = append(results, Result{
			Event:      r.Event,
			Candidates: r.Candidates,
			Summary:    Summarize(r.Event, r.Candidates),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	m.logger.Info("matching complete",
		zap.Int("events", len(results)),
		zap.Int64("tolerance", m.tolerance))

	return results, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

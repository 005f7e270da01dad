package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splicelab/splicematch/internal/event"
	"github.com/splicelab/splicematch/internal/merge"
	"github.com/splicelab/splicematch/internal/refdb"
)

func testEvent(id, gene string) *event.SplicingEvent {
	ev, err := event.NewFromID(id, gene, "test.tsv")
	if err != nil {
		panic(err)
	}
	return ev
}

func testRef(refID, gene, chrom string, start, end int64, strand, typ string) *event.ReferenceEvent {
	return &event.ReferenceEvent{
		RefEventID: refID,
		GeneID:     gene,
		Chrom:      chrom,
		Start:      start,
		End:        end,
		Strand:     strand,
		EventType:  typ,
		Annotation: "test",
	}
}

func TestMatch_CoordinateScoring(t *testing.T) {
	db := refdb.New()
	db.Add(testRef("REF_A", "G1", "chr1", 1003, 1198, "+", "SE"))

	m := NewMatcher(db, 5)
	ev := testEvent("chr1:1000:1200:+:SE", "G1")

	candidates := m.Match(ev)
	require.Len(t, candidates, 1)

	// |1000-1003| + |1200-1198| = 3 + 2 = 5; score = 1 - 5/10 = 0.5
	c := candidates[0]
	assert.Equal(t, int64(5), c.CoordinateDistance)
	assert.InDelta(t, 0.5, c.MatchScore, 1e-9)
	assert.True(t, c.TypeMatch)
	assert.Equal(t, 1.0, c.ConsistencyScore)
}

func TestMatch_PerfectMatch(t *testing.T) {
	db := refdb.New()
	db.Add(testRef("REF_A", "G1", "chr1", 1000, 1200, "+", "SE"))

	m := NewMatcher(db, 5)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G1"))

	require.Len(t, candidates, 1)
	assert.Equal(t, int64(0), candidates[0].CoordinateDistance)
	assert.Equal(t, 1.0, candidates[0].MatchScore)
}

func TestMatch_ToleranceBoundary(t *testing.T) {
	db := refdb.New()
	// Both endpoints off by exactly the tolerance.
	db.Add(testRef("REF_EDGE", "G1", "chr1", 1005, 1205, "+", "SE"))
	// One endpoint one past the tolerance.
	db.Add(testRef("REF_OUT", "G1", "chr1", 1006, 1200, "+", "SE"))

	m := NewMatcher(db, 5)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G1"))

	// Only the edge candidate survives, with the worst accepted score.
	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "REF_EDGE", c.Ref.RefEventID)
	assert.Equal(t, int64(10), c.CoordinateDistance)
	assert.Equal(t, 0.0, c.MatchScore)
}

func TestMatch_GeneIsolation(t *testing.T) {
	db := refdb.New()
	// Identical coordinates but a different gene: never a candidate.
	db.Add(testRef("REF_OTHER", "G2", "chr1", 1000, 1200, "+", "SE"))

	m := NewMatcher(db, 5)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G1"))
	assert.Empty(t, candidates)
}

func TestMatch_ExactKeyRequired(t *testing.T) {
	tests := []struct {
		name string
		ref  *event.ReferenceEvent
	}{
		{"different strand", testRef("R1", "G1", "chr1", 1000, 1200, "-", "SE")},
		{"different type", testRef("R2", "G1", "chr1", 1000, 1200, "+", "RI")},
		{"different chromosome", testRef("R3", "G1", "chr2", 1000, 1200, "+", "SE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := refdb.New()
			db.Add(tt.ref)
			m := NewMatcher(db, 5)
			assert.Empty(t, m.Match(testEvent("chr1:1000:1200:+:SE", "G1")))
		})
	}
}

func TestMatch_ChromPrefixNormalized(t *testing.T) {
	db := refdb.New()
	// Reference uses bare chromosome names.
	db.Add(testRef("REF_A", "G1", "1", 1000, 1200, "+", "SE"))

	m := NewMatcher(db, 5)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G1"))
	require.Len(t, candidates, 1)
}

func TestMatch_EmptyReferenceForGene(t *testing.T) {
	m := NewMatcher(refdb.New(), 5)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G2"))
	assert.Nil(t, candidates)
}

func TestMatch_MultipleCandidatesInLoadOrder(t *testing.T) {
	db := refdb.New()
	db.Add(testRef("REF_1", "G1", "chr1", 1001, 1199, "+", "SE"))
	db.Add(testRef("REF_2", "G1", "chr1", 1000, 1200, "+", "SE"))
	db.Add(testRef("REF_3", "G1", "chr1", 1004, 1204, "+", "SE"))

	m := NewMatcher(db, 5)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G1"))

	require.Len(t, candidates, 3)
	assert.Equal(t, "REF_1", candidates[0].Ref.RefEventID)
	assert.Equal(t, "REF_2", candidates[1].Ref.RefEventID)
	assert.Equal(t, "REF_3", candidates[2].Ref.RefEventID)
}

func TestMatch_ZeroTolerance(t *testing.T) {
	db := refdb.New()
	db.Add(testRef("REF_EXACT", "G1", "chr1", 1000, 1200, "+", "SE"))
	db.Add(testRef("REF_NEAR", "G1", "chr1", 1001, 1200, "+", "SE"))

	m := NewMatcher(db, 0)
	candidates := m.Match(testEvent("chr1:1000:1200:+:SE", "G1"))

	require.Len(t, candidates, 1)
	assert.Equal(t, "REF_EXACT", candidates[0].Ref.RefEventID)
	assert.Equal(t, 1.0, candidates[0].MatchScore)
}

func TestMatch_ScoreBounds(t *testing.T) {
	db := refdb.New()
	for _, ref := range []*event.ReferenceEvent{
		testRef("R1", "G1", "chr1", 1000, 1200, "+", "SE"),
		testRef("R2", "G1", "chr1", 995, 1205, "+", "SE"),
		testRef("R3", "G1", "chr1", 1002, 1197, "+", "SE"),
	} {
		db.Add(ref)
	}

	m := NewMatcher(db, 5)
	for _, c := range m.Match(testEvent("chr1:1000:1200:+:SE", "G1")) {
		assert.GreaterOrEqual(t, c.MatchScore, 0.0)
		assert.LessOrEqual(t, c.MatchScore, 1.0)
		if c.CoordinateDistance == 0 {
			assert.Equal(t, 1.0, c.MatchScore)
		}
		if c.CoordinateDistance == 2*m.Tolerance() {
			assert.Equal(t, 0.0, c.MatchScore)
		}
	}
}

func TestMatchAll_CatalogOrder(t *testing.T) {
	db := refdb.New()
	db.Add(testRef("REF_A", "G1", "chr1", 1000, 1200, "+", "SE"))

	catalog := merge.NewCatalog()
	ids := []string{
		"chr1:1000:1200:+:SE",
		"chr1:5000:6000:+:SE",
		"chr1:1001:1199:+:SE",
	}
	for _, id := range ids {
		require.True(t, catalog.Add(testEvent(id, "G1")))
	}

	m := NewMatcher(db, 5)
	results, err := m.MatchAll(catalog, 4)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, ids[i], r.Event.EventID)
		assert.Equal(t, ids[i], r.Summary.EventID)
	}

	assert.Equal(t, ClassHigh, results[0].Summary.Class)
	assert.Equal(t, ClassUnmatched, results[1].Summary.Class)
	assert.Equal(t, 0, results[1].Summary.NMatches)
	assert.Equal(t, ClassMedium, results[2].Summary.Class)
}

func TestNewMatcher_NegativeTolerance(t *testing.T) {
	m := NewMatcher(refdb.New(), -3)
	assert.Equal(t, int64(0), m.Tolerance())
}

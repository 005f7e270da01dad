package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventID(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		chrom     string
		start     int64
		end       int64
		strand    string
		eventType string
	}{
		{"skipped exon", "chr1:1000:1200:+:SE", "chr1", 1000, 1200, "+", "SE"},
		{"retained intron reverse strand", "chr12:25245000:25245100:-:RI", "chr12", 25245000, 25245100, "-", "RI"},
		{"no chr prefix", "7:500:500:+:A5SS", "7", 500, 500, "+", "A5SS"},
		{"mutually exclusive exons", "chrX:1:99:-:MXE", "chrX", 1, 99, "-", "MXE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chrom, start, end, strand, eventType, err := ParseEventID(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.chrom, chrom)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.strand, strand)
			assert.Equal(t, tt.eventType, eventType)
		})
	}
}

func TestParseEventID_Malformed(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"too few fields", "chr1:1000:1200:+"},
		{"too many fields", "chr1:1000:1200:+:SE:extra"},
		{"empty", ""},
		{"non-numeric start", "chr1:abc:1200:+:SE"},
		{"non-numeric end", "chr1:1000:xyz:+:SE"},
		{"float start", "chr1:1000.5:1200:+:SE"},
		{"start after end", "chr1:1200:1000:+:SE"},
		{"invalid strand", "chr1:1000:1200:*:SE"},
		{"unknown event type", "chr1:1000:1200:+:FOO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, _, _, err := ParseEventID(tt.id)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.id, pe.Raw)
		})
	}
}

func TestNewFromID(t *testing.T) {
	ev, err := NewFromID("chr1:1000:1200:+:SE", "G1", "rmats_events.tsv")
	require.NoError(t, err)

	assert.Equal(t, "chr1:1000:1200:+:SE", ev.EventID)
	assert.Equal(t, "G1", ev.GeneID)
	assert.Equal(t, "chr1", ev.Chrom)
	assert.Equal(t, int64(1000), ev.Start)
	assert.Equal(t, int64(1200), ev.End)
	assert.Equal(t, "+", ev.Strand)
	assert.Equal(t, TypeSkippedExon, ev.EventType)
	assert.Equal(t, "rmats_events.tsv", ev.SourceFile)
}

func TestNewFromID_Malformed(t *testing.T) {
	_, err := NewFromID("chr1:1000:+:SE", "G1", "src.tsv")
	require.Error(t, err)
}

func TestNormalizeChrom(t *testing.T) {
	ev := &SplicingEvent{Chrom: "chr12"}
	assert.Equal(t, "12", ev.NormalizeChrom())

	ev.Chrom = "12"
	assert.Equal(t, "12", ev.NormalizeChrom())

	ref := &ReferenceEvent{Chrom: "chrX"}
	assert.Equal(t, "X", ref.NormalizeChrom())
}

func TestKey_ChromNormalized(t *testing.T) {
	ev := &SplicingEvent{Chrom: "chr1", Strand: "+", EventType: TypeSkippedExon}
	ref := &ReferenceEvent{Chrom: "1", Strand: "+", EventType: TypeSkippedExon}
	assert.Equal(t, ev.Key(), ref.Key())

	ref.Strand = "-"
	assert.NotEqual(t, ev.Key(), ref.Key())
}

func TestKnownType(t *testing.T) {
	for _, typ := range []string{TypeSkippedExon, TypeMutuallyExclusive, TypeRetainedIntron, TypeAlt5SpliceSite, TypeAlt3SpliceSite} {
		assert.True(t, KnownType(typ), typ)
	}
	assert.False(t, KnownType("ES"))
	assert.False(t, KnownType(""))
}

func TestParseError_Context(t *testing.T) {
	err := &ParseError{Source: "rmats.tsv", Line: 42, Raw: "chr1:1:2:+", Message: "expected 5 colon-delimited fields, found 4"}
	assert.Contains(t, err.Error(), "rmats.tsv:42")
	assert.Contains(t, err.Error(), "chr1:1:2:+")
}

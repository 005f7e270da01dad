// Package event defines the canonical splicing-event records and the
// identifier parsing shared by all pipeline stages.
package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Splicing event types as reported by upstream detectors (rMATS naming).
const (
	TypeSkippedExon       = "SE"
	TypeMutuallyExclusive = "MXE"
	TypeRetainedIntron    = "RI"
	TypeAlt5SpliceSite    = "A5SS"
	TypeAlt3SpliceSite    = "A3SS"
)

// knownTypes is the fixed event-type vocabulary.
var knownTypes = map[string]bool{
	TypeSkippedExon:       true,
	TypeMutuallyExclusive: true,
	TypeRetainedIntron:    true,
	TypeAlt5SpliceSite:    true,
	TypeAlt3SpliceSite:    true,
}

// KnownType reports whether t is part of the event-type vocabulary.
func KnownType(t string) bool {
	return knownTypes[t]
}

// SplicingEvent is the canonical unit produced by normalization.
// Events are immutable once they enter the merged catalog.
type SplicingEvent struct {
	EventID    string // composite identifier, unique post-merge
	GeneID     string // host gene; many events per gene
	Chrom      string // chromosome name (e.g. "chr1", "1")
	Start      int64  // 1-based start coordinate
	End        int64  // 1-based end coordinate, Start <= End
	Strand     string // "+" or "-"
	EventType  string // one of the Type* constants
	SourceFile string // provenance tag, first-seen source after dedup
}

// ReferenceEvent is one record from an external reference event database.
// Read-only; never created or mutated by this system.
type ReferenceEvent struct {
	RefEventID string
	GeneID     string
	Chrom      string
	Start      int64
	End        int64
	Strand     string
	EventType  string
	Annotation string // free-text source annotation
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (e *SplicingEvent) NormalizeChrom() string {
	return normalizeChrom(e.Chrom)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *ReferenceEvent) NormalizeChrom() string {
	return normalizeChrom(r.Chrom)
}

func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// Key is the composite equality key used during matching. Two events are
// only ever scored against each other when their keys are identical.
type Key struct {
	Chrom     string
	Strand    string
	EventType string
}

// Key returns the matching key with the chromosome normalized.
func (e *SplicingEvent) Key() Key {
	return Key{Chrom: e.NormalizeChrom(), Strand: e.Strand, EventType: e.EventType}
}

// Key returns the matching key with the chromosome normalized.
func (r *ReferenceEvent) Key() Key {
	return Key{Chrom: r.NormalizeChrom(), Strand: r.Strand, EventType: r.EventType}
}

// ParseError reports a record that failed normalization, with enough
// context for manual triage.
type ParseError struct {
	Source  string // originating file, may be empty
	Line    int    // line number within the source, 0 if unknown
	Raw     string // the raw identifier that failed
	Message string
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: malformed event identifier %q: %s", e.Source, e.Line, e.Raw, e.Message)
	}
	return fmt.Sprintf("malformed event identifier %q: %s", e.Raw, e.Message)
}

// ParseEventID decomposes a composite identifier of the form
// chr:start:end:strand:type into its coordinate fields.
// The field count must be exactly 5 and both coordinates must parse
// as integers with start <= end.
func ParseEventID(id string) (chrom string, start, end int64, strand, eventType string, err error) {
	fields := strings.Split(id, ":")
	if len(fields) != 5 {
		return "", 0, 0, "", "", &ParseError{
			Raw:     id,
			Message: fmt.Sprintf("expected 5 colon-delimited fields, found %d", len(fields)),
		}
	}

	chrom = fields[0]
	strand = fields[3]
	eventType = fields[4]

	start, err = strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, 0, "", "", &ParseError{
			Raw:     id,
			Message: fmt.Sprintf("invalid start coordinate %q", fields[1]),
		}
	}

	end, err = strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return "", 0, 0, "", "", &ParseError{
			Raw:     id,
			Message: fmt.Sprintf("invalid end coordinate %q", fields[2]),
		}
	}

	if start > end {
		return "", 0, 0, "", "", &ParseError{
			Raw:     id,
			Message: fmt.Sprintf("start %d greater than end %d", start, end),
		}
	}

	if strand != "+" && strand != "-" {
		return "", 0, 0, "", "", &ParseError{
			Raw:     id,
			Message: fmt.Sprintf("invalid strand %q", strand),
		}
	}

	if !KnownType(eventType) {
		return "", 0, 0, "", "", &ParseError{
			Raw:     id,
			Message: fmt.Sprintf("unknown event type %q", eventType),
		}
	}

	return chrom, start, end, strand, eventType, nil
}

// NewFromID builds a SplicingEvent from a composite identifier plus its
// auxiliary columns. Pure transformation, no side effects.
func NewFromID(id, geneID, sourceFile string) (*SplicingEvent, error) {
	chrom, start, end, strand, eventType, err := ParseEventID(id)
	if err != nil {
		return nil, err
	}
	return &SplicingEvent{
		EventID:    id,
		GeneID:     geneID,
		Chrom:      chrom,
		Start:      start,
		End:        end,
		Strand:     strand,
		EventType:  eventType,
		SourceFile: sourceFile,
	}, nil
}

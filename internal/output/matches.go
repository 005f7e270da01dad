package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/splicelab/splicematch/internal/match"
)

// MatchWriter writes the detailed per-candidate match table.
type MatchWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewMatchWriter creates a new detailed match writer.
func NewMatchWriter(w io.Writer) *MatchWriter {
	return &MatchWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"event_id",
			"gene_id",
			"ref_event_id",
			"coordinate_distance",
			"match_score",
			"type_match",
			"consistency_score",
		},
	}
}

// WriteHeader writes the header line.
func (mw *MatchWriter) WriteHeader() error {
	_, err := mw.w.WriteString(strings.Join(mw.columns, "\t") + "\n")
	return err
}

// Write writes a single match candidate.
func (mw *MatchWriter) Write(c match.Candidate) error {
	typeMatch := "no"
	if c.TypeMatch {
		typeMatch = "yes"
	}
	_, err := fmt.Fprintf(mw.w, "%s\t%s\t%s\t%d\t%.4f\t%s\t%.1f\n",
		c.Event.EventID, c.Event.GeneID, c.Ref.RefEventID,
		c.CoordinateDistance, c.MatchScore, typeMatch, c.ConsistencyScore)
	return err
}

// Flush flushes buffered output.
func (mw *MatchWriter) Flush() error {
	return mw.w.Flush()
}

// SummaryWriter writes the per-event match summary table.
type SummaryWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewSummaryWriter creates a new match summary writer.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"event_id",
			"gene_id",
			"n_matches",
			"best_ref_id",
			"best_match_score",
			"type_consistent",
			"match_class",
		},
	}
}

// WriteHeader writes the header line.
func (sw *SummaryWriter) WriteHeader() error {
	_, err := sw.w.WriteString(strings.Join(sw.columns, "\t") + "\n")
	return err
}

// Write writes a single event summary. Events without candidates have no
// best reference or score; those fields render as "-".
func (sw *SummaryWriter) Write(s match.Summary) error {
	bestRef := "-"
	bestScore := "-"
	if s.HasBest {
		bestRef = s.BestRefID
		bestScore = fmt.Sprintf("%.4f", s.BestScore)
	}

	typeConsistent := "no"
	if s.TypeConsistent {
		typeConsistent = "yes"
	}

	_, err := fmt.Fprintf(sw.w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
		s.EventID, s.GeneID, s.NMatches, bestRef, bestScore, typeConsistent, s.Class)
	return err
}

// Flush flushes buffered output.
func (sw *SummaryWriter) Flush() error {
	return sw.w.Flush()
}

// WriteStats writes the match statistics table. Every event appears in
// exactly one tier, with matched = High + Medium + Low.
func WriteStats(w io.Writer, stats match.Stats) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("category\tcount\n"); err != nil {
		return err
	}

	rows := []struct {
		category string
		count    int
	}{
		{"total_events", stats.Total},
		{"matched", stats.Matched},
		{string(match.ClassHigh), stats.High},
		{string(match.ClassMedium), stats.Medium},
		{string(match.ClassLow), stats.Low},
		{string(match.ClassUnmatched), stats.Unmatched},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", row.category, row.count); err != nil {
			return err
		}
	}

	mean, stddev := "-", "-"
	if stats.ScoredEvents > 0 {
		mean = fmt.Sprintf("%.4f", stats.MeanBestScore)
		stddev = fmt.Sprintf("%.4f", stats.StddevBestScore)
	}
	if _, err := fmt.Fprintf(bw, "mean_best_score\t%s\n", mean); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "stddev_best_score\t%s\n", stddev); err != nil {
		return err
	}

	return bw.Flush()
}

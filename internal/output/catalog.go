// Package output provides tab-delimited writers for the pipeline's
// result tables.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/splicelab/splicematch/internal/event"
	"github.com/splicelab/splicematch/internal/merge"
)

// CatalogWriter writes the merged event catalog in tab-delimited format.
type CatalogWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewCatalogWriter creates a new catalog writer.
func NewCatalogWriter(w io.Writer) *CatalogWriter {
	return &CatalogWriter{
		w:       bufio.NewWriter(w),
		columns: merge.CatalogColumns(),
	}
}

// WriteHeader writes the header line.
func (cw *CatalogWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(cw.columns, "\t") + "\n")
	return err
}

// Write writes a single catalog event.
func (cw *CatalogWriter) Write(ev *event.SplicingEvent) error {
	_, err := fmt.Fprintf(cw.w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
		ev.EventID, ev.GeneID, ev.Chrom, ev.Start, ev.End, ev.Strand, ev.EventType, ev.SourceFile)
	return err
}

// WriteAll writes the full catalog in first-seen order.
func (cw *CatalogWriter) WriteAll(catalog *merge.Catalog) error {
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	for _, ev := range catalog.Events() {
		if err := cw.Write(ev); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// Flush flushes buffered output.
func (cw *CatalogWriter) Flush() error {
	return cw.w.Flush()
}

// WriteTypeSummary writes the per-event-type summary table.
func WriteTypeSummary(w io.Writer, rows []merge.TypeSummaryRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("event_type\tcount\tunique_genes\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", row.EventType, row.Count, row.UniqueGenes); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteGeneCoverage writes the per-gene coverage table.
func WriteGeneCoverage(w io.Writer, rows []merge.GeneCoverageRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("gene_id\ttotal_events\tevent_types\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", row.GeneID, row.TotalEvents, row.EventTypes); err != nil {
			return err
		}
	}
	return bw.Flush()
}

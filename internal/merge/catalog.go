package merge

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/splicelab/splicematch/internal/event"
)

// Catalog is the deduplicated event catalog. Events keep first-seen order
// and are immutable once added.
type Catalog struct {
	events []*event.SplicingEvent
	index  map[string]*event.SplicingEvent
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]*event.SplicingEvent)}
}

// Add inserts an event unless its event_id is already present.
// Returns true if the event was added, false if it was a duplicate.
func (c *Catalog) Add(ev *event.SplicingEvent) bool {
	if _, ok := c.index[ev.EventID]; ok {
		return false
	}
	c.index[ev.EventID] = ev
	c.events = append(c.events, ev)
	return true
}

// Get returns the event with the given id, or nil.
func (c *Catalog) Get(eventID string) *event.SplicingEvent {
	return c.index[eventID]
}

// Events returns all events in first-seen order. Callers must not modify
// the returned slice or its elements.
func (c *Catalog) Events() []*event.SplicingEvent {
	return c.events
}

// Len returns the number of unique events.
func (c *Catalog) Len() int {
	return len(c.events)
}

// TypeSummaryRow is one per-event-type summary entry.
type TypeSummaryRow struct {
	EventType   string
	Count       int
	UniqueGenes int
}

// TypeSummary returns per-type counts with distinct-gene counts,
// sorted by event type.
func (c *Catalog) TypeSummary() []TypeSummaryRow {
	counts := make(map[string]int)
	genes := make(map[string]map[string]bool)
	for _, ev := range c.events {
		counts[ev.EventType]++
		if genes[ev.EventType] == nil {
			genes[ev.EventType] = make(map[string]bool)
		}
		genes[ev.EventType][ev.GeneID] = true
	}

	rows := make([]TypeSummaryRow, 0, len(counts))
	for typ, n := range counts {
		rows = append(rows, TypeSummaryRow{EventType: typ, Count: n, UniqueGenes: len(genes[typ])})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EventType < rows[j].EventType })
	return rows
}

// GeneCoverageRow is one per-gene summary entry.
type GeneCoverageRow struct {
	GeneID      string
	TotalEvents int
	EventTypes  int
}

// GeneCoverage returns per-gene event counts with distinct-type counts,
// sorted by gene id.
func (c *Catalog) GeneCoverage() []GeneCoverageRow {
	counts := make(map[string]int)
	types := make(map[string]map[string]bool)
	for _, ev := range c.events {
		counts[ev.GeneID]++
		if types[ev.GeneID] == nil {
			types[ev.GeneID] = make(map[string]bool)
		}
		types[ev.GeneID][ev.EventType] = true
	}

	rows := make([]GeneCoverageRow, 0, len(counts))
	for gene, n := range counts {
		rows = append(rows, GeneCoverageRow{GeneID: gene, TotalEvents: n, EventTypes: len(types[gene])})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].GeneID < rows[j].GeneID })
	return rows
}

// Catalog table column names, shared by the catalog writer and reader.
var catalogColumns = []string{
	"event_id", "gene_id", "chrom", "start", "end", "strand", "event_type", "source_file",
}

// CatalogColumns returns the catalog table header columns.
func CatalogColumns() []string {
	return catalogColumns
}

// ReadCatalog loads a previously written catalog table so that merging
// and matching can run as separate invocations.
func ReadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek catalog: %w", err)
	}
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ReadCatalogFromReader(reader, filepath.Base(path))
}

// ReadCatalogFromReader loads a catalog table from r. name is used in
// error messages.
func ReadCatalogFromReader(r io.Reader, name string) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	cols := make(map[string]int)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for i, col := range strings.Split(line, "\t") {
			cols[col] = i
		}
		break
	}
	for _, required := range catalogColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("catalog %s: required column %q not found in header", name, required)
		}
	}

	catalog := NewCatalog()
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < len(catalogColumns) {
			return nil, fmt.Errorf("catalog %s:%d: expected %d columns, found %d", name, lineNumber, len(catalogColumns), len(fields))
		}

		start, err := strconv.ParseInt(fields[cols["start"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog %s:%d: invalid start coordinate %q", name, lineNumber, fields[cols["start"]])
		}
		end, err := strconv.ParseInt(fields[cols["end"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog %s:%d: invalid end coordinate %q", name, lineNumber, fields[cols["end"]])
		}

		catalog.Add(&event.SplicingEvent{
			EventID:    fields[cols["event_id"]],
			GeneID:     fields[cols["gene_id"]],
			Chrom:      fields[cols["chrom"]],
			Start:      start,
			End:        end,
			Strand:     fields[cols["strand"]],
			EventType:  fields[cols["event_type"]],
			SourceFile: fields[cols["source_file"]],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return catalog, nil
}

// Package refdb loads the external reference event database and indexes
// it by host gene for candidate generation.
package refdb

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

// Required reference table column names.
const (
	ColGeneID     = "gene_id"
	ColRefEventID = "ref_event_id"
	ColChrom      = "chr"
	ColStart      = "start"
	ColEnd        = "end"
	ColStrand     = "strand"
	ColType       = "type"
	ColAnnotation = "ref_annotation"
)

var requiredColumns = []string{
	ColGeneID, ColRefEventID, ColChrom, ColStart, ColEnd, ColStrand, ColType, ColAnnotation,
}

// DB provides gene-keyed access to reference events. Events within a gene
// keep their load order, which downstream tie-breaking depends on.
type DB struct {
	byGene map[string][]*event.ReferenceEvent
	count  int
}

// New creates an empty reference database.
func New() *DB {
	return &DB{byGene: make(map[string][]*event.ReferenceEvent)}
}

// Add appends a reference event to its gene's entry list.
func (db *DB) Add(r *event.ReferenceEvent) {
	db.byGene[r.GeneID] = append(db.byGene[r.GeneID], r)
	db.count++
}

// FindByGene returns all reference events for a gene in load order,
// or nil when the gene has no reference entries.
func (db *DB) FindByGene(geneID string) []*event.ReferenceEvent {
	return db.byGene[geneID]
}

// Count returns the total number of reference events.
func (db *DB) Count() int {
	return db.count
}

// Genes returns a sorted list of genes present in the database.
func (db *DB) Genes() []string {
	genes := make([]string, 0, len(db.byGene))
	for g := range db.byGene {
		genes = append(genes, g)
	}
	sort.Strings(genes)
	return genes
}

// Load reads a reference database table from path. Supports plain and
// gzipped tab-separated files. Loading is eager and complete: a header
// missing any required column fails before any event is indexed.
func Load(path string) (*DB, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek reference table: %w", err)
	}
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return LoadFromReader(reader, filepath.Base(path))
}

// LoadFromReader reads a reference database table from r. name is used
// in error messages.
func LoadFromReader(r io.Reader, name string) (*DB, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	cols, lineNumber, err := readHeader(scanner, name)
	if err != nil {
		return nil, err
	}

	db := New()
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ref, err := parseLine(line, cols, name, lineNumber)
		if err != nil {
			return nil, err
		}
		db.Add(ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reference table: %w", err)
	}

	return db, nil
}

func readHeader(scanner *bufio.Scanner, name string) (map[string]int, int, error) {
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := make(map[string]int)
		for i, col := range strings.Split(line, "\t") {
			cols[col] = i
		}
		for _, required := range requiredColumns {
			if _, ok := cols[required]; !ok {
				return nil, 0, fmt.Errorf("reference %s: required column %q not found in header", name, required)
			}
		}
		return cols, lineNumber, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read reference header: %w", err)
	}
	return nil, 0, fmt.Errorf("reference %s: no header line found", name)
}

func parseLine(line string, cols map[string]int, name string, lineNumber int) (*event.ReferenceEvent, error) {
	fields := strings.Split(line, "\t")

	get := func(col string) (string, error) {
		i := cols[col]
		if i >= len(fields) {
			return "", fmt.Errorf("reference %s:%d: missing value for column %q", name, lineNumber, col)
		}
		return fields[i], nil
	}

	ref := &event.ReferenceEvent{}
	var err error
	if ref.GeneID, err = get(ColGeneID); err != nil {
		return nil, err
	}
	if ref.RefEventID, err = get(ColRefEventID); err != nil {
		return nil, err
	}
	if ref.Chrom, err = get(ColChrom); err != nil {
		return nil, err
	}
	if ref.Strand, err = get(ColStrand); err != nil {
		return nil, err
	}
	if ref.EventType, err = get(ColType); err != nil {
		return nil, err
	}
	if ref.Annotation, err = get(ColAnnotation); err != nil {
		return nil, err
	}

	startStr, err := get(ColStart)
	if err != nil {
		return nil, err
	}
	ref.Start, err = strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("reference %s:%d: invalid start coordinate %q", name, lineNumber, startStr)
	}

	endStr, err := get(ColEnd)
	if err != nil {
		return nil, err
	}
	ref.End, err = strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("reference %s:%d: invalid end coordinate %q", name, lineNumber, endStr)
	}

	return ref, nil
}

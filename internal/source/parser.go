// Package source provides parsing of per-source splicing event tables.
package source

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/splicelab/splicematch/internal/event"
)

// Required source table column names.
const (
	ColEventID   = "event_id"
	ColGeneID    = "gene_id"
	ColEventType = "event_type"
)

// SchemaError reports a source table missing a required column.
// A schema error is fatal to the whole merge.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source %s: required column %q not found in header", e.File, e.Column)
}

// columnIndices holds the positions of the required columns.
type columnIndices struct {
	eventID   int
	geneID    int
	eventType int
}

// Parser reads normalized splicing events from one source table.
// Supports plain and gzipped (.gz) tab-separated files, and "-" for stdin.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	name       string // provenance tag, the base filename
	lineNumber int
	columns    columnIndices
	headerLine string
}

// NewParser opens a source table and validates its header.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin, "stdin")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source table: %w", err)
	}

	p := &Parser{file: file, name: filepath.Base(path)}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read source header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek source table: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g. stdin).
// name is used as the provenance tag in parsed events.
func NewParserFromReader(r io.Reader, name string) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
		name:   name,
	}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseHeader reads the first non-comment line and resolves column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("read header: %w", err)
			}
			if line == "" {
				return &SchemaError{File: p.name, Column: ColEventID}
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

func (p *Parser) parseColumnIndices(headerLine string) error {
	columns := strings.Split(headerLine, "\t")

	p.columns = columnIndices{eventID: -1, geneID: -1, eventType: -1}

	for i, col := range columns {
		switch col {
		case ColEventID:
			p.columns.eventID = i
		case ColGeneID:
			p.columns.geneID = i
		case ColEventType:
			p.columns.eventType = i
		}
	}

	if p.columns.eventID == -1 {
		return &SchemaError{File: p.name, Column: ColEventID}
	}
	if p.columns.geneID == -1 {
		return &SchemaError{File: p.name, Column: ColGeneID}
	}
	if p.columns.eventType == -1 {
		return &SchemaError{File: p.name, Column: ColEventType}
	}

	return nil
}

// Next reads the next event from the source table.
// Returns nil, nil when there are no more records.
// A *event.ParseError return is local to one record; callers decide
// whether to skip-and-count or abort.
func (p *Parser) Next() (*event.SplicingEvent, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return nil, fmt.Errorf("read record line: %w", err)
		}
		// A file without a trailing newline still carries a final record.
		if line == "" {
			return nil, nil
		}
	}
	p.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, "#") {
		return p.Next()
	}

	return p.parseLine(line)
}

func (p *Parser) parseLine(line string) (*event.SplicingEvent, error) {
	fields := strings.Split(line, "\t")

	minCols := p.columns.eventID
	if p.columns.geneID > minCols {
		minCols = p.columns.geneID
	}
	if p.columns.eventType > minCols {
		minCols = p.columns.eventType
	}
	if len(fields) <= minCols {
		return nil, &event.ParseError{
			Source:  p.name,
			Line:    p.lineNumber,
			Raw:     line,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	id := fields[p.columns.eventID]
	ev, err := event.NewFromID(id, fields[p.columns.geneID], p.name)
	if err != nil {
		var pe *event.ParseError
		if errors.As(err, &pe) {
			pe.Source = p.name
			pe.Line = p.lineNumber
		}
		return nil, err
	}

	// The event_type column must agree with the identifier's type field.
	if typ := fields[p.columns.eventType]; typ != ev.EventType {
		return nil, &event.ParseError{
			Source:  p.name,
			Line:    p.lineNumber,
			Raw:     id,
			Message: fmt.Sprintf("event_type column %q disagrees with identifier type %q", typ, ev.EventType),
		}
	}

	return ev, nil
}

// Name returns the provenance tag for this source.
func (p *Parser) Name() string {
	return p.name
}

// Header returns the source table header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

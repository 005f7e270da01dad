package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/splicelab/splicematch/internal/event"
)

// WriteEvents batch-inserts catalog events using the Appender API.
// Duplicate event_ids are deduplicated first-wins before writing,
// mirroring the catalog's uniqueness invariant.
func (s *Store) WriteEvents(events []*event.SplicingEvent) error {
	if len(events) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(events))
	deduped := make([]*event.SplicingEvent, 0, len(events))
	for _, ev := range events {
		if !seen[ev.EventID] {
			seen[ev.EventID] = true
			deduped = append(deduped, ev)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "events")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, ev := range deduped {
		if err := appender.AppendRow(
			ev.EventID, ev.GeneID, ev.Chrom, ev.Start, ev.End,
			ev.Strand, ev.EventType, ev.SourceFile,
		); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}

	return appender.Flush()
}

// EventCount returns the number of stored catalog events.
func (s *Store) EventCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// LookupEventsByGene queries stored catalog events for a gene.
func (s *Store) LookupEventsByGene(geneID string) ([]*event.SplicingEvent, error) {
	rows, err := s.db.Query(`SELECT
		event_id, gene_id, chrom, start_pos, end_pos, strand, event_type, source_file
		FROM events WHERE gene_id=?`, geneID)
	if err != nil {
		return nil, fmt.Errorf("query events by gene: %w", err)
	}
	defer rows.Close()

	var events []*event.SplicingEvent
	for rows.Next() {
		var ev event.SplicingEvent
		if err := rows.Scan(
			&ev.EventID, &ev.GeneID, &ev.Chrom, &ev.Start, &ev.End,
			&ev.Strand, &ev.EventType, &ev.SourceFile,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ClearEvents removes all stored catalog events.
func (s *Store) ClearEvents() error {
	_, err := s.db.Exec("DELETE FROM events")
	return err
}

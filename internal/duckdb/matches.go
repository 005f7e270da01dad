package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/splicelab/splicematch/internal/match"
)

// MatchRow is one stored match result row.
type MatchRow struct {
	EventID            string
	GeneID             string
	RefEventID         string
	CoordinateDistance int64
	MatchScore         float64
	TypeMatch          bool
	ConsistencyScore   float64
}

// WriteMatchResults batch-inserts match candidates using the Appender API.
// Duplicate (event_id, ref_event_id) pairs are deduplicated before writing.
func (s *Store) WriteMatchResults(candidates []match.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	type key struct{ eventID, refID string }
	seen := make(map[key]bool, len(candidates))
	deduped := make([]match.Candidate, 0, len(candidates))
	for _, c := range candidates {
		k := key{c.Event.EventID, c.Ref.RefEventID}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, c)
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
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "match_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, c := range deduped {
		if err := appender.AppendRow(
			c.Event.EventID, c.Event.GeneID, c.Ref.RefEventID,
			c.CoordinateDistance, c.MatchScore, c.TypeMatch, c.ConsistencyScore,
		); err != nil {
			return fmt.Errorf("append match result: %w", err)
		}
	}

	return appender.Flush()
}

// MatchResultCount returns the number of stored match results.
func (s *Store) MatchResultCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM match_results").Scan(&count); err != nil {
		return 0, fmt.Errorf("count match results: %w", err)
	}
	return count, nil
}

// LookupMatches queries stored match results for an event.
func (s *Store) LookupMatches(eventID string) ([]MatchRow, error) {
	rows, err := s.db.Query(`SELECT
		event_id, gene_id, ref_event_id, coordinate_distance,
		match_score, type_match, consistency_score
		FROM match_results WHERE event_id=?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var results []MatchRow
	for rows.Next() {
		var r MatchRow
		if err := rows.Scan(
			&r.EventID, &r.GeneID, &r.RefEventID, &r.CoordinateDistance,
			&r.MatchScore, &r.TypeMatch, &r.ConsistencyScore,
		); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return results, nil
}

// ClearMatchResults removes all stored match results.
func (s *Store) ClearMatchResults() error {
	_, err := s.db.Exec("DELETE FROM match_results")
	return err
}

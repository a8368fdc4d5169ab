// Package history records each optimization run in a local sqlite database
// so past recommendations can be compared against what actually happened.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var ddl string

// Pick roles as stored in the picks table.
const (
	RoleStart   = "start"
	RoleBench   = "bench"
	RoleCaptain = "captain"
	RoleVice    = "vice"
)

// Run is one optimization run's headline numbers.
type Run struct {
	ID            int64
	CreatedOn     time.Time
	Gameweek      int
	Chip          string
	Formation     string
	SquadCost     float64
	SquadExpected float64
	Projected     float64
	Transfers     int
	Penalty       float64
}

// Pick is one squad member's place in a recorded run.
type Pick struct {
	Element  int
	Name     string
	Position string
	Team     string
	Cost     float64
	Expected float64
	Role     string
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database. An empty path opens an
// in-memory database, which the tests rely on.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts the run and its picks in one transaction and returns the
// new run id.
func (s *Store) RecordRun(ctx context.Context, run Run, picks []Pick) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	created := run.CreatedOn
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_on, gameweek, chip, formation, squad_cost, squad_expected, projected, transfers, penalty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.Format(time.RFC3339), run.Gameweek, run.Chip, run.Formation,
		run.SquadCost, run.SquadExpected, run.Projected, run.Transfers, run.Penalty)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range picks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO picks (run_id, element, name, position, team, cost, expected, role)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.Element, p.Name, p.Position, p.Team, p.Cost, p.Expected, p.Role); err != nil {
			return 0, fmt.Errorf("insert pick %d: %w", p.Element, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_on, gameweek, chip, formation, squad_cost, squad_expected, projected, transfers, penalty
		 FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Gameweek, &r.Chip, &r.Formation,
			&r.SquadCost, &r.SquadExpected, &r.Projected, &r.Transfers, &r.Penalty); err != nil {
			return nil, err
		}
		r.CreatedOn, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Picks returns the picks recorded for a run.
func (s *Store) Picks(ctx context.Context, runID int64) ([]Pick, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT element, name, position, team, cost, expected, role
		 FROM picks WHERE run_id = ? ORDER BY expected DESC, element ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pick
	for rows.Next() {
		var p Pick
		if err := rows.Scan(&p.Element, &p.Name, &p.Position, &p.Team, &p.Cost, &p.Expected, &p.Role); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

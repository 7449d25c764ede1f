/*
DESCRIPTION
  store.go provides SQLite persistence of tracking runs and their trajectory
  sets.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package store persists tracking runs, one snapshot per frame, to an
// SQLite database.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/frame"
	"github.com/ausocean/opticflow/track"
)

// schema.sql contains the statements creating the run, point, loss and
// frame tables.
//
//go:embed schema.sql
var schemaSQL string

// Params are the tracking parameters recorded with a run.
type Params struct {
	WindowSize    int     `json:"window_size"`
	NumIters      int     `json:"num_iters"`
	Levels        int     `json:"levels"`
	Scale         float64 `json:"scale"`
	ErrorThresh   float64 `json:"error_thresh"`
	ExcludeBorder int     `json:"exclude_border"`
}

// ParamsOf returns the tracking parameters of c.
func ParamsOf(c config.Config) Params {
	return Params{
		WindowSize:    c.WindowSize,
		NumIters:      c.NumIters,
		Levels:        c.Levels,
		Scale:         c.Scale,
		ErrorThresh:   c.ErrorThresh,
		ExcludeBorder: c.ExcludeBorder,
	}
}

// Run describes a stored tracking run.
type Run struct {
	ID        string
	Source    string // Description of the frame source, such as a path.
	Params    Params
	Keypoints int   // Number of initial keypoints.
	CreatedAt int64 // Unix nanoseconds.
}

// Store is an SQLite backed store of tracking runs.
type Store struct {
	db *sql.DB
}

// Open opens, creating if needed, the database at path. A path of ":memory:"
// gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", p, err)
		}
	}

	_, err = db.Exec(schemaSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// StartRun records a new run and returns its generated ID.
func (s *Store) StartRun(source string, p Params, keypoints int) (string, error) {
	params, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO runs (run_id, source, params_json, keypoints, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, source, string(params), keypoints, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// SaveSnapshot stores the points and losses of snap for the run.
func (s *Store) SaveSnapshot(runID string, snap track.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO frames (run_id, frame) VALUES (?, ?)`, runID, snap.Frame)
	if err != nil {
		return fmt.Errorf("insert frame %d: %w", snap.Frame, err)
	}

	pts, err := tx.Prepare(`
		INSERT INTO points (run_id, frame, point_id, pos_row, pos_col)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare point insert: %w", err)
	}
	defer pts.Close()
	for _, p := range snap.Points {
		_, err := pts.Exec(runID, snap.Frame, p.ID, p.Pos.Row, p.Pos.Col)
		if err != nil {
			return fmt.Errorf("insert point %d: %w", p.ID, err)
		}
	}

	for _, l := range snap.Lost {
		_, err := tx.Exec(`
			INSERT INTO losses (run_id, frame, point_id, reason, pos_row, pos_col)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, snap.Frame, l.ID, int(l.Reason), l.Pos.Row, l.Pos.Col,
		)
		if err != nil {
			return fmt.Errorf("insert loss of point %d: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

// Runs returns all stored runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source, params_json, keypoints, created_at
		FROM runs
		ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var params string
		err := rows.Scan(&r.ID, &r.Source, &params, &r.Keypoints, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		err = json.Unmarshal([]byte(params), &r.Params)
		if err != nil {
			return nil, fmt.Errorf("unmarshal params of run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Snapshots returns the stored trajectory set of a run, in frame order.
func (s *Store) Snapshots(runID string) ([]track.Snapshot, error) {
	rows, err := s.db.Query(`SELECT frame FROM frames WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	var snaps []track.Snapshot
	index := make(map[int]int)
	for rows.Next() {
		var f int
		if err := rows.Scan(&f); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		index[f] = len(snaps)
		snaps = append(snaps, track.Snapshot{Frame: f})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT frame, point_id, pos_row, pos_col FROM points
		WHERE run_id = ?
		ORDER BY frame, point_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	for rows.Next() {
		var f int
		var p track.Point
		if err := rows.Scan(&f, &p.ID, &p.Pos.Row, &p.Pos.Col); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan point: %w", err)
		}
		i := index[f]
		snaps[i].Points = append(snaps[i].Points, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT frame, point_id, reason, pos_row, pos_col FROM losses
		WHERE run_id = ?
		ORDER BY frame, point_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query losses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f, reason int
		var l track.Loss
		if err := rows.Scan(&f, &l.ID, &reason, &l.Pos.Row, &l.Pos.Col); err != nil {
			return nil, fmt.Errorf("scan loss: %w", err)
		}
		l.Reason = track.LossReason(reason)
		i := index[f]
		snaps[i].Lost = append(snaps[i].Lost, l)
	}
	return snaps, rows.Err()
}

// Trajectory returns the positions of one point of a run, in frame order.
func (s *Store) Trajectory(runID string, pointID int) ([]frame.Keypoint, error) {
	rows, err := s.db.Query(`
		SELECT pos_row, pos_col FROM points
		WHERE run_id = ? AND point_id = ?
		ORDER BY frame`, runID, pointID)
	if err != nil {
		return nil, fmt.Errorf("query trajectory: %w", err)
	}
	defer rows.Close()

	var kps []frame.Keypoint
	for rows.Next() {
		var k frame.Keypoint
		if err := rows.Scan(&k.Row, &k.Col); err != nil {
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		kps = append(kps, k)
	}
	return kps, rows.Err()
}

// Package trackdb persists track-linking results to SQLite: one row
// per run plus the per-frame detection occupancy, division links and
// death flags of every track, so runs can be compared and reloaded
// later.
package trackdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/arden-bio/celltrack/internal/track"
)

// DB wraps the SQLite handle used by the lineage store.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies any pending
// schema migrations.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("trackdb: %w", err)
	}
	db := &DB{handle}
	if err := db.migrateUp(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Run describes one stored track-linking run.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Frames     int
	Cells      int
	Iterations int
}

// SaveResult stores a tracking result under a fresh run ID and returns
// the ID.
func (db *DB) SaveResult(res *track.Result) (string, error) {
	runID := uuid.NewString()
	numT := len(res.CellMatrix)
	numCells := len(res.DeathMatrix)

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("trackdb: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at, frames, cells, iterations)
		VALUES (?, ?, ?, ?, ?)
	`, runID, time.Now().UTC().Format(time.RFC3339Nano), numT, numCells, res.Iterations)
	if err != nil {
		return "", fmt.Errorf("trackdb: insert run: %w", err)
	}

	for c := 0; c < numCells; c++ {
		_, err = tx.Exec(`
			INSERT INTO tracks (run_id, track_index, child1, child2, death)
			VALUES (?, ?, ?, ?, ?)
		`, runID, c+1, res.DivisionMatrix[c][0], res.DivisionMatrix[c][1], res.DeathMatrix[c])
		if err != nil {
			return "", fmt.Errorf("trackdb: insert track: %w", err)
		}
		for t := 0; t < numT; t++ {
			if res.CellMatrix[t][c] == 0 {
				continue
			}
			_, err = tx.Exec(`
				INSERT INTO track_points (run_id, track_index, frame, detection)
				VALUES (?, ?, ?, ?)
			`, runID, c+1, t+1, res.CellMatrix[t][c])
			if err != nil {
				return "", fmt.Errorf("trackdb: insert track point: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("trackdb: %w", err)
	}
	return runID, nil
}

// LoadResult reloads the matrices of a stored run.
func (db *DB) LoadResult(runID string) (*track.Result, error) {
	var numT, numCells, iterations int
	err := db.QueryRow(`
		SELECT frames, cells, iterations FROM runs WHERE run_id = ?
	`, runID).Scan(&numT, &numCells, &iterations)
	if err != nil {
		return nil, fmt.Errorf("trackdb: load run %s: %w", runID, err)
	}

	res := &track.Result{
		CellMatrix:     make([][]int, numT),
		DivisionMatrix: make([][2]int, numCells),
		DeathMatrix:    make([]int, numCells),
		Iterations:     iterations,
	}
	for t := range res.CellMatrix {
		res.CellMatrix[t] = make([]int, numCells)
	}

	rows, err := db.Query(`
		SELECT track_index, child1, child2, death FROM tracks WHERE run_id = ? ORDER BY track_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("trackdb: load tracks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c, child1, child2, death int
		if err := rows.Scan(&c, &child1, &child2, &death); err != nil {
			return nil, fmt.Errorf("trackdb: %w", err)
		}
		res.DivisionMatrix[c-1] = [2]int{child1, child2}
		res.DeathMatrix[c-1] = death
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trackdb: %w", err)
	}

	points, err := db.Query(`
		SELECT track_index, frame, detection FROM track_points WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("trackdb: load track points: %w", err)
	}
	defer points.Close()
	for points.Next() {
		var c, t, d int
		if err := points.Scan(&c, &t, &d); err != nil {
			return nil, fmt.Errorf("trackdb: %w", err)
		}
		res.CellMatrix[t-1][c-1] = d
	}
	if err := points.Err(); err != nil {
		return nil, fmt.Errorf("trackdb: %w", err)
	}
	return res, nil
}

// ListRuns returns all stored runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, created_at, frames, cells, iterations FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("trackdb: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Frames, &r.Cells, &r.Iterations); err != nil {
			return nil, fmt.Errorf("trackdb: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("trackdb: bad timestamp for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Package storage provides SQLite-based persistence for run history and the
// progression save slot.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/shape-clash/internal/progress"
	"github.com/vovakirdan/shape-clash/internal/stage"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// RunRecord is one finished stage run.
type RunRecord struct {
	ID           int64
	StageIndex   int
	Score        int
	TargetScore  int
	Win          bool
	Aborted      bool
	DurationSecs float64
	Seed         int64
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stage_index INTEGER NOT NULL,
			score INTEGER NOT NULL,
			target_score INTEGER NOT NULL,
			win INTEGER NOT NULL DEFAULT 0,
			aborted INTEGER NOT NULL DEFAULT 0,
			duration_secs REAL NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage_index);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(stage_index, score DESC);

		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run. Returns the ID of the inserted record.
func (s *Store) SaveRun(run RunRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (stage_index, score, target_score, win, aborted, duration_secs, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StageIndex, run.Score, run.TargetScore, run.Win, run.Aborted, run.DurationSecs, run.Seed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveResult records a stage result played with the given seed.
func (s *Store) SaveResult(res stage.StageResult, seed int64) (int64, error) {
	return s.SaveRun(RunRecord{
		StageIndex:   res.StageIndex,
		Score:        res.Score,
		TargetScore:  res.TargetScore,
		Win:          res.Win,
		Aborted:      res.Aborted,
		DurationSecs: res.Elapsed,
		Seed:         seed,
	})
}

const runColumns = `id, stage_index, score, target_score, win, aborted, duration_secs, seed, created_at`

// TopRuns retrieves the best N runs of a stage.
// Results are ordered by score descending, oldest first on ties.
func (s *Store) TopRuns(stageIndex, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE stage_index = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		stageIndex, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// AllRuns retrieves every run of a stage in play order.
func (s *Store) AllRuns(stageIndex int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE stage_index = ?
		 ORDER BY id ASC`,
		stageIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var createdAt any
		if err := rows.Scan(&r.ID, &r.StageIndex, &r.Score, &r.TargetScore,
			&r.Win, &r.Aborted, &r.DurationSecs, &r.Seed, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// HighScore returns the best recorded score of a stage.
// Returns 0 if no runs exist.
func (s *Store) HighScore(stageIndex int) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE stage_index = ?",
		stageIndex,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearRuns deletes the run history of a stage.
func (s *Store) ClearRuns(stageIndex int) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE stage_index = ?", stageIndex)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// StageStats contains aggregated statistics for a stage.
type StageStats struct {
	StageIndex int
	Runs       int
	Wins       int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// GetStageStats retrieves aggregated statistics for one stage.
func (s *Store) GetStageStats(stageIndex int) (*StageStats, error) {
	stats := &StageStats{StageIndex: stageIndex}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(win), 0), COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM runs WHERE stage_index = ?`,
		stageIndex,
	).Scan(&stats.Runs, &stats.Wins, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stage stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllStageStats retrieves statistics for every stage that has been played.
func (s *Store) GetAllStageStats() (map[int]*StageStats, error) {
	rows, err := s.db.Query(
		`SELECT stage_index, COUNT(*), SUM(win), MAX(score), AVG(score), SUM(score), MAX(created_at)
		 FROM runs
		 GROUP BY stage_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all stage stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[int]*StageStats)
	for rows.Next() {
		var st StageStats
		var lastPlayed any
		if err := rows.Scan(&st.StageIndex, &st.Runs, &st.Wins, &st.HighScore, &st.AvgScore, &st.TotalScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.StageIndex] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// Read implements progress.Backend.
func (s *Store) Read(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, progress.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}
	return value, nil
}

// Write implements progress.Backend. The upsert is a single statement so a
// failed write leaves the previous value in place.
func (s *Store) Write(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	return nil
}

// Ensure Store implements progress.Backend
var _ progress.Backend = (*Store)(nil)

// parseTime handles the datetime column coming back as time.Time or string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

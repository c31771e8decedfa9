package progress

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// DefaultKey is the backend key the single save slot lives under.
const DefaultKey = "save"

// ErrOutOfRange is returned for a stage index outside the record.
var ErrOutOfRange = errors.New("progress: stage index out of range")

// Store owns the in-memory progression record and writes it back to the
// backend on every change. The in-memory record stays authoritative when a
// write fails. Not safe for concurrent use.
type Store struct {
	backend Backend
	key     string
	logger  *log.Logger
	rec     Record
}

// NewStore creates a store over backend. An empty key uses DefaultKey and a
// nil logger discards output. Call LoadOrInit before use.
func NewStore(backend Backend, key string, logger *log.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		backend: backend,
		key:     key,
		logger:  logger,
		rec:     NewRecord(1),
	}
}

// LoadOrInit reads the saved record and fits it to totalStages. A missing or
// corrupt save is replaced by a fresh one. A failed read also yields a fresh
// record in memory but is not overwritten on disk. The returned error, if
// any, is a *PersistenceError for the host to log; the record is usable
// either way.
func (s *Store) LoadOrInit(totalStages int) (Record, error) {
	data, err := s.backend.Read(s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.rec = NewRecord(totalStages)
		s.logger.Debug("no save found, starting fresh", "key", s.key)
		return s.Record(), s.persist()

	case err != nil:
		s.rec = NewRecord(totalStages)
		s.logger.Warn("save read failed, starting fresh", "key", s.key, "error", err)
		return s.Record(), &PersistenceError{Op: "read", Key: s.key, Err: err}
	}

	rec, err := Unmarshal(data)
	if err != nil {
		s.rec = NewRecord(totalStages)
		s.logger.Warn("save is corrupt, starting fresh", "key", s.key, "error", err)
		decodeErr := &PersistenceError{Op: "decode", Key: s.key, Err: err}
		return s.Record(), errors.Join(decodeErr, s.persist())
	}

	s.rec = rec
	return s.Record(), s.Resize(totalStages)
}

// Record returns a copy of the current record.
func (s *Store) Record() Record {
	return s.rec.Clone()
}

// Resize fits the record to totalStages, preserving scores by index.
func (s *Store) Resize(totalStages int) error {
	return s.apply(func(r Record) Record { return r.Resized(totalStages) })
}

// RecordScore raises the stored high score of stage index to score if higher.
func (s *Store) RecordScore(index, score int) error {
	if index < 0 || index >= len(s.rec.HighScores) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	return s.apply(func(r Record) Record {
		if score > r.HighScores[index] {
			r.HighScores[index] = score
		}
		return r
	})
}

// UnlockUpTo makes stages 0..index playable, capped at totalStages. It never
// lowers the unlock count.
func (s *Store) UnlockUpTo(index, totalStages int) error {
	total := totalStages
	if total < 1 {
		total = 1
	}
	want := index + 1
	if want < 1 {
		want = 1
	}
	if want > total {
		want = total
	}
	return s.apply(func(r Record) Record {
		if want > r.UnlockedStageCount {
			r.UnlockedStageCount = want
		}
		return r
	})
}

// SelectStage remembers index as the last played stage.
func (s *Store) SelectStage(index int) error {
	if index < 0 || index >= len(s.rec.HighScores) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	return s.apply(func(r Record) Record {
		r.LastStageIndex = index
		return r
	})
}

// MarkStarted records that the player has entered gameplay at least once.
func (s *Store) MarkStarted() error {
	return s.apply(func(r Record) Record {
		r.HasStarted = true
		return r
	})
}

// NewGame wipes progress and marks the game as started.
func (s *Store) NewGame(totalStages int) error {
	rec := NewRecord(totalStages)
	rec.HasStarted = true
	s.rec = rec
	s.logger.Info("new game", "stages", len(rec.HighScores))
	return s.persist()
}

// ResetAll wipes progress back to a never-played record.
func (s *Store) ResetAll(totalStages int) error {
	s.rec = NewRecord(totalStages)
	s.logger.Info("progress reset", "stages", len(s.rec.HighScores))
	return s.persist()
}

// IsUnlocked reports whether stage index is playable.
func (s *Store) IsUnlocked(index int) bool {
	return index >= 0 && index < s.rec.UnlockedStageCount
}

// HighScore returns the best score recorded for stage index.
func (s *Store) HighScore(index int) int {
	if index < 0 || index >= len(s.rec.HighScores) {
		return 0
	}
	return s.rec.HighScores[index]
}

// HasNextStage reports whether a stage follows index.
func HasNextStage(index, totalStages int) bool {
	return index+1 < totalStages
}

// apply mutates a copy and persists only when it differs from the current
// record. The mutation is kept in memory even if the write fails.
func (s *Store) apply(mutate func(Record) Record) error {
	next := mutate(s.rec.Clone())
	if next.Equal(s.rec) {
		return nil
	}
	s.rec = next
	return s.persist()
}

func (s *Store) persist() error {
	data, err := Marshal(s.rec)
	if err != nil {
		return &PersistenceError{Op: "write", Key: s.key, Err: err}
	}
	if err := s.backend.Write(s.key, data); err != nil {
		s.logger.Warn("save write failed", "key", s.key, "error", err)
		return &PersistenceError{Op: "write", Key: s.key, Err: err}
	}
	return nil
}

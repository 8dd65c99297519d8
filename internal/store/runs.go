package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/injurywire/internal/model"
)

// RecordRun stores a run summary
func (s *Store) RecordRun(ctx context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, started, finished, stats) VALUES (?, ?, ?, ?)`,
		run.ID, run.Started, run.Finished, string(stats)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently finished run
func (s *Store) LatestRun(ctx context.Context) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var run model.Run
	var stats string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started, finished, stats FROM runs ORDER BY finished DESC LIMIT 1`).
		Scan(&run.ID, &run.Started, &run.Finished, &stats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Run{}, fmt.Errorf("latest run: %w", ErrNotFound)
		}
		return model.Run{}, fmt.Errorf("query run: %w", err)
	}
	if err := json.Unmarshal([]byte(stats), &run.Stats); err != nil {
		return model.Run{}, fmt.Errorf("decode stats: %w", err)
	}
	return run, nil
}

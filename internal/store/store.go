// Package store provides SQLite persistence for players, current
// assumptions, the assumption log, and run summaries.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/injurywire/internal/model"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// PreferFunc reports whether incoming should replace existing
type PreferFunc func(existing, incoming model.Assumption) bool

var nowFunc = time.Now

// Store handles SQLite persistence. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	prefer PreferFunc
}

// Open opens or creates the database at path and applies the schema.
// prefer decides merges on Save; nil always takes the incoming assumption.
func Open(path string, prefer PreferFunc) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps :memory: databases whole and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if prefer == nil {
		prefer = func(existing, incoming model.Assumption) bool { return true }
	}

	s := &Store{db: db, prefer: prefer}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		team TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS player_assumptions (
		player_id INTEGER NOT NULL,
		game_id TEXT NOT NULL DEFAULT '',
		assumption_type TEXT NOT NULL,
		minutes_multiplier REAL,
		minutes_cap INTEGER,
		confidence_level TEXT NOT NULL,
		requires_verification INTEGER NOT NULL,
		reason TEXT NOT NULL,
		source TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		raw_signal TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (player_id, game_id)
	);

	CREATE TABLE IF NOT EXISTS assumption_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER NOT NULL,
		game_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		applied INTEGER NOT NULL,
		logged_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started TEXT NOT NULL,
		finished TEXT NOT NULL,
		stats TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assumptions_timestamp ON player_assumptions(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_log_player ON assumption_log(player_id, game_id);
	CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save merges a into the current assumption for its key inside one
// transaction. saved is false when the stored assumption is preferred.
// Every offer is appended to the assumption log.
func (s *Store) Save(ctx context.Context, a model.Assumption) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := scanAssumption(tx.QueryRowContext(ctx, selectAssumption+` WHERE player_id = ? AND game_id = ?`, a.PlayerID, a.GameID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("load current: %w", err)
	}

	apply := existing == nil || s.prefer(*existing, a)

	if apply {
		if err := upsert(ctx, tx, a); err != nil {
			return false, err
		}
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode log entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assumption_log (player_id, game_id, payload, applied, logged_at) VALUES (?, ?, ?, ?, ?)`,
		a.PlayerID, a.GameID, string(payload), apply, model.FormatTimestamp(nowFunc())); err != nil {
		return false, fmt.Errorf("append log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return apply, nil
}

func upsert(ctx context.Context, tx *sql.Tx, a model.Assumption) error {
	var raw sql.NullString
	if a.RawSignal != nil {
		b, err := json.Marshal(a.RawSignal)
		if err != nil {
			return fmt.Errorf("encode raw signal: %w", err)
		}
		raw = sql.NullString{String: string(b), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_assumptions (
			player_id, game_id, assumption_type, minutes_multiplier, minutes_cap,
			confidence_level, requires_verification, reason, source, timestamp, raw_signal, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id, game_id) DO UPDATE SET
			assumption_type = excluded.assumption_type,
			minutes_multiplier = excluded.minutes_multiplier,
			minutes_cap = excluded.minutes_cap,
			confidence_level = excluded.confidence_level,
			requires_verification = excluded.requires_verification,
			reason = excluded.reason,
			source = excluded.source,
			timestamp = excluded.timestamp,
			raw_signal = excluded.raw_signal,
			updated_at = excluded.updated_at
	`,
		a.PlayerID, a.GameID, string(a.Type), nullFloat(a.MinutesMultiplier), nullInt(a.MinutesCap),
		string(a.Confidence), a.RequiresVerification, a.Reason, a.Source, a.Timestamp, raw,
		model.FormatTimestamp(nowFunc()))
	if err != nil {
		return fmt.Errorf("upsert assumption: %w", err)
	}
	return nil
}

const selectAssumption = `
	SELECT player_id, game_id, assumption_type, minutes_multiplier, minutes_cap,
		confidence_level, requires_verification, reason, source, timestamp, raw_signal
	FROM player_assumptions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssumption(row rowScanner) (*model.Assumption, error) {
	var (
		a          model.Assumption
		typ, conf  string
		multiplier sql.NullFloat64
		minutesCap sql.NullInt64
		raw        sql.NullString
	)
	err := row.Scan(&a.PlayerID, &a.GameID, &typ, &multiplier, &minutesCap,
		&conf, &a.RequiresVerification, &a.Reason, &a.Source, &a.Timestamp, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Type = model.AssumptionType(typ)
	a.Confidence = model.Confidence(conf)
	if multiplier.Valid {
		a.MinutesMultiplier = model.Float(multiplier.Float64)
	}
	if minutesCap.Valid {
		a.MinutesCap = model.Int(int(minutesCap.Int64))
	}
	if raw.Valid && raw.String != "" {
		var sig model.Signal
		if err := json.Unmarshal([]byte(raw.String), &sig); err == nil {
			a.RawSignal = &sig
		}
	}
	return &a, nil
}

// Current returns the stored assumption for key
func (s *Store) Current(ctx context.Context, key model.Key) (model.Assumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := scanAssumption(s.db.QueryRowContext(ctx, selectAssumption+` WHERE player_id = ? AND game_id = ?`, key.PlayerID, key.GameID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Assumption{}, fmt.Errorf("assumption %s: %w", key, ErrNotFound)
		}
		return model.Assumption{}, fmt.Errorf("query assumption: %w", err)
	}
	return *a, nil
}

// ListFilter narrows List. Zero values mean no filter.
type ListFilter struct {
	PlayerID int64
	Since    string // TimestampLayout lower bound, inclusive
	Limit    int
}

// List returns current assumptions, newest first
func (s *Store) List(ctx context.Context, f ListFilter) ([]model.Assumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectAssumption + ` WHERE 1 = 1`
	var args []any
	if f.PlayerID != 0 {
		query += ` AND player_id = ?`
		args = append(args, f.PlayerID)
	}
	if f.Since != "" {
		query += ` AND timestamp >= ?`
		args = append(args, f.Since)
	}
	query += ` ORDER BY timestamp DESC, player_id, game_id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assumptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Assumption
	for rows.Next() {
		a, err := scanAssumption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assumption: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// LogEntry is one offered assumption and whether it was applied
type LogEntry struct {
	Assumption model.Assumption `json:"assumption"`
	Applied    bool             `json:"applied"`
	LoggedAt   string           `json:"logged_at"`
}

// History returns the logged offers for key, newest first
func (s *Store) History(ctx context.Context, key model.Key, limit int) ([]LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload, applied, logged_at FROM assumption_log WHERE player_id = ? AND game_id = ? ORDER BY id DESC LIMIT ?`,
		key.PlayerID, key.GameID, limit)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []LogEntry
	for rows.Next() {
		var payload string
		var e LogEntry
		if err := rows.Scan(&payload, &e.Applied, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Assumption); err != nil {
			return nil, fmt.Errorf("decode log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

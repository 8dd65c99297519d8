package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppiankov/injurywire/internal/model"
)

// Players returns active players. It satisfies resolve.Directory.
func (s *Store) Players(ctx context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, team, active FROM players WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.Active); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Player returns one player by id
func (s *Store) Player(ctx context.Context, id int64) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p model.Player
	err := s.db.QueryRowContext(ctx, `SELECT id, name, team, active FROM players WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Team, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Player{}, fmt.Errorf("player %d: %w", id, ErrNotFound)
		}
		return model.Player{}, fmt.Errorf("query player: %w", err)
	}
	return p, nil
}

// UpsertPlayers inserts or updates players by id in one transaction
func (s *Store) UpsertPlayers(ctx context.Context, players []model.Player) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(players) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (id, name, team, active) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, team = excluded.team, active = excluded.active
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range players {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Team, p.Active); err != nil {
			return 0, fmt.Errorf("upsert player %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(players), nil
}

// ReadPlayersCSV parses "id,name[,team[,active]]" rows. A header row whose
// first field is not numeric is skipped. Active defaults to true.
func ReadPlayersCSV(r io.Reader) ([]model.Player, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var players []model.Player
	for record := 1; ; record++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("record %d: expected at least id and name", record)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			if record == 1 {
				continue
			}
			return nil, fmt.Errorf("record %d: invalid id %q", record, rec[0])
		}

		p := model.Player{ID: id, Name: strings.TrimSpace(rec[1]), Active: true}
		if len(rec) > 2 {
			p.Team = strings.TrimSpace(rec[2])
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			active, err := strconv.ParseBool(strings.TrimSpace(rec[3]))
			if err != nil {
				return nil, fmt.Errorf("record %d: invalid active flag %q", record, rec[3])
			}
			p.Active = active
		}
		if p.Name == "" {
			return nil, fmt.Errorf("record %d: empty name", record)
		}
		players = append(players, p)
	}
	return players, nil
}

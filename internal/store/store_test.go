package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/injurywire/internal/assume"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	merger := assume.NewMerger(priority.NewTable(model.DefaultConfig().Priorities))
	st, err := Open(":memory:", merger.Prefers)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func outAssumption(source, ts string) model.Assumption {
	return model.Assumption{
		PlayerID:          2544,
		Type:              model.AssumptionInjuryStatus,
		MinutesMultiplier: model.Float(0),
		Confidence:        model.ConfidenceHigh,
		Reason:            "Status: OUT",
		Source:            source,
		Timestamp:         ts,
		RawSignal:         &model.Signal{PlayerName: "LeBron James", Status: model.StatusOut, RawText: "LeBron James is out"},
	}
}

func TestOpen(t *testing.T) {
	st := openTest(t)

	for _, table := range []string{"players", "player_assumptions", "assumption_log", "runs"} {
		var name string
		err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist, got %v", table, err)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	a := outAssumption("rotowire_rss", "2024-01-15T18:30:00.000000Z")
	a.MinutesCap = model.Int(24)
	saved, err := st.Save(ctx, a)
	if err != nil || !saved {
		t.Fatalf("Expected first save to apply, got %v %v", saved, err)
	}

	got, err := st.Current(ctx, a.Key())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got.Reason != "Status: OUT" || got.Source != "rotowire_rss" || got.Confidence != model.ConfidenceHigh {
		t.Errorf("Unexpected assumption: %+v", got)
	}
	if got.MinutesMultiplier == nil || *got.MinutesMultiplier != 0 {
		t.Errorf("Expected multiplier 0.0 to survive the round trip, got %v", got.MinutesMultiplier)
	}
	if got.MinutesCap == nil || *got.MinutesCap != 24 {
		t.Errorf("Expected minutes cap 24, got %v", got.MinutesCap)
	}
	if got.RawSignal == nil || got.RawSignal.Status != model.StatusOut {
		t.Errorf("Expected raw signal to round trip, got %+v", got.RawSignal)
	}
}

func TestSave_MergeByPriority(t *testing.T) {
	tests := []struct {
		desc       string
		first      model.Assumption
		second     model.Assumption
		wantSaved  bool
		wantSource string
	}{
		{
			desc:       "official replaces news",
			first:      outAssumption("general_news", "2024-01-15T18:00:00.000000Z"),
			second:     outAssumption("official_nba_injury_report", "2024-01-15T17:00:00.000000Z"),
			wantSaved:  true,
			wantSource: "official_nba_injury_report",
		},
		{
			desc:       "news does not replace official",
			first:      outAssumption("official_nba_injury_report", "2024-01-15T17:00:00.000000Z"),
			second:     outAssumption("general_news", "2024-01-15T18:00:00.000000Z"),
			wantSaved:  false,
			wantSource: "official_nba_injury_report",
		},
		{
			desc:       "tie with newer incoming replaces",
			first:      outAssumption("rotowire_rss", "2024-01-15T17:00:00.000000Z"),
			second:     outAssumption("realgm_rss", "2024-01-15T18:00:00.000000Z"),
			wantSaved:  true,
			wantSource: "realgm_rss",
		},
		{
			desc:       "tie with older incoming keeps existing",
			first:      outAssumption("rotowire_rss", "2024-01-15T18:00:00.000000Z"),
			second:     outAssumption("realgm_rss", "2024-01-15T17:00:00.000000Z"),
			wantSaved:  false,
			wantSource: "rotowire_rss",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			st := openTest(t)
			ctx := context.Background()

			if _, err := st.Save(ctx, tt.first); err != nil {
				t.Fatalf("First save failed: %v", err)
			}
			saved, err := st.Save(ctx, tt.second)
			if err != nil {
				t.Fatalf("Second save failed: %v", err)
			}
			if saved != tt.wantSaved {
				t.Errorf("Expected saved %v, got %v", tt.wantSaved, saved)
			}

			got, err := st.Current(ctx, tt.first.Key())
			if err != nil {
				t.Fatalf("Current failed: %v", err)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Expected source %s, got %s", tt.wantSource, got.Source)
			}

			history, err := st.History(ctx, tt.first.Key(), 10)
			if err != nil {
				t.Fatalf("History failed: %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("Expected 2 log entries, got %d", len(history))
			}
			if history[0].Applied != tt.wantSaved || history[0].Assumption.Source != tt.second.Source {
				t.Errorf("Expected newest log entry to be the second offer, got %+v", history[0])
			}
		})
	}
}

func TestSave_GameScoped(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	a := outAssumption("general_news", "2024-01-15T18:00:00.000000Z")
	b := outAssumption("general_news", "2024-01-15T18:00:00.000000Z")
	b.GameID = "0022300555"

	for _, x := range []model.Assumption{a, b} {
		if saved, err := st.Save(ctx, x); err != nil || !saved {
			t.Fatalf("Expected independent keys to both save, got %v %v", saved, err)
		}
	}

	list, err := st.List(ctx, ListFilter{PlayerID: 2544})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 assumptions, got %d", len(list))
	}
}

func TestSave_Concurrent(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	sources := []string{"general_news", "hoopshype_rss", "rotowire_rss", "official_nba_injury_report", "beat_writer_twitter"}
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			if _, err := st.Save(ctx, outAssumption(src, "2024-01-15T18:00:00.000000Z")); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		}(src)
	}
	wg.Wait()

	got, err := st.Current(ctx, model.Key{PlayerID: 2544})
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got.Source != "official_nba_injury_report" {
		t.Errorf("Expected official source to win regardless of order, got %s", got.Source)
	}
}

func TestCurrent_NotFound(t *testing.T) {
	st := openTest(t)
	_, err := st.Current(context.Background(), model.Key{PlayerID: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	for i, ts := range []string{"2024-01-15T10:00:00.000000Z", "2024-01-15T12:00:00.000000Z", "2024-01-15T14:00:00.000000Z"} {
		a := outAssumption("general_news", ts)
		a.PlayerID = int64(100 + i)
		if _, err := st.Save(ctx, a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	tests := []struct {
		desc   string
		filter ListFilter
		want   []int64
	}{
		{desc: "all newest first", filter: ListFilter{}, want: []int64{102, 101, 100}},
		{desc: "limit", filter: ListFilter{Limit: 1}, want: []int64{102}},
		{desc: "since", filter: ListFilter{Since: "2024-01-15T12:00:00.000000Z"}, want: []int64{102, 101}},
		{desc: "player", filter: ListFilter{PlayerID: 100}, want: []int64{100}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			list, err := st.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("Expected %d assumptions, got %d", len(tt.want), len(list))
			}
			for i, id := range tt.want {
				if list[i].PlayerID != id {
					t.Errorf("Expected player %d at %d, got %d", id, i, list[i].PlayerID)
				}
			}
		})
	}
}

func TestPlayers(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	n, err := st.UpsertPlayers(ctx, []model.Player{
		{ID: 2544, Name: "LeBron James", Team: "LAL", Active: true},
		{ID: 203999, Name: "Nikola Jokic", Team: "DEN", Active: true},
		{ID: 1, Name: "Retired Player", Active: false},
	})
	if err != nil || n != 3 {
		t.Fatalf("Expected 3 upserts, got %d (%v)", n, err)
	}

	// Update in place
	if _, err := st.UpsertPlayers(ctx, []model.Player{{ID: 2544, Name: "LeBron James", Team: "LAL", Active: true}}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	players, err := st.Players(ctx)
	if err != nil {
		t.Fatalf("Players failed: %v", err)
	}
	if len(players) != 2 {
		t.Errorf("Expected 2 active players, got %d", len(players))
	}

	p, err := st.Player(ctx, 1)
	if err != nil || p.Active {
		t.Errorf("Expected inactive player 1, got %+v (%v)", p, err)
	}
	if _, err := st.Player(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReadPlayersCSV(t *testing.T) {
	tests := []struct {
		desc    string
		input   string
		want    int
		wantErr bool
	}{
		{desc: "header and rows", input: "id,name,team,active\n2544,LeBron James,LAL,true\n203999,Nikola Jokic,DEN\n", want: 2},
		{desc: "no header", input: "2544,LeBron James\n", want: 1},
		{desc: "comment lines", input: "# roster\n2544,LeBron James\n", want: 1},
		{desc: "bad id after header", input: "2544,LeBron James\nabc,Nobody\n", wantErr: true},
		{desc: "missing name", input: "2544\n", wantErr: true},
		{desc: "bad active flag", input: "2544,LeBron James,LAL,maybe\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			players, err := ReadPlayersCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", players)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(players) != tt.want {
				t.Errorf("Expected %d players, got %d", tt.want, len(players))
			}
		})
	}
}

func TestRuns(t *testing.T) {
	st := openTest(t)
	ctx := context.Background()

	if _, err := st.LatestRun(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound before any run, got %v", err)
	}

	runs := []model.Run{
		{ID: "a", Started: "2024-01-15T10:00:00.000000Z", Finished: "2024-01-15T10:00:01.000000Z", Stats: model.RunStats{Items: 3}},
		{ID: "b", Started: "2024-01-15T11:00:00.000000Z", Finished: "2024-01-15T11:00:01.000000Z", Stats: model.RunStats{Items: 5, Saved: 2}},
	}
	for _, r := range runs {
		if err := st.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	latest, err := st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if latest.ID != "b" || latest.Stats.Saved != 2 {
		t.Errorf("Expected run b with 2 saved, got %+v", latest)
	}
}

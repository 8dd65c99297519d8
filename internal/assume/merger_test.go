package assume

import (
	"sync"
	"testing"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
)

func testMerger() *Merger {
	return NewMerger(priority.NewTable(model.DefaultConfig().Priorities))
}

func candidate(source, ts string) model.Assumption {
	return model.Assumption{PlayerID: 2544, Source: source, Timestamp: ts, Reason: source + "@" + ts}
}

func TestMerge_RankWinsRegardlessOfOrder(t *testing.T) {
	m := testMerger()

	a := candidate("official_nba_injury_report", "2026-01-01T10:00:00.000000Z")
	b := candidate("beat_writer_twitter", "2026-01-01T18:00:00.000000Z")

	if got := m.Merge(a, b); got.Reason != a.Reason {
		t.Errorf("Merge(A, B): expected A, got %s", got.Reason)
	}
	if got := m.Merge(b, a); got.Reason != a.Reason {
		t.Errorf("Merge(B, A): expected A, got %s", got.Reason)
	}
}

func TestMerge_Ties(t *testing.T) {
	m := testMerger()

	tests := []struct {
		existing model.Assumption
		incoming model.Assumption
		expected string
		desc     string
	}{
		{
			existing: candidate("rotowire_rss", "2026-01-01T10:00:00.000000Z"),
			incoming: candidate("realgm_rss", "2026-01-01T11:00:00.000000Z"),
			expected: "realgm_rss@2026-01-01T11:00:00.000000Z",
			desc:     "Later incoming wins on equal rank",
		},
		{
			existing: candidate("rotowire_rss", "2026-01-01T12:00:00.000000Z"),
			incoming: candidate("realgm_rss", "2026-01-01T11:00:00.000000Z"),
			expected: "rotowire_rss@2026-01-01T12:00:00.000000Z",
			desc:     "Later existing is kept on equal rank",
		},
		{
			existing: candidate("rotowire_rss", "2026-01-01T10:00:00.000000Z"),
			incoming: candidate("realgm_rss", "2026-01-01T10:00:00.000000Z"),
			expected: "realgm_rss@2026-01-01T10:00:00.000000Z",
			desc:     "Identical timestamps favor incoming",
		},
		{
			existing: candidate("some_blog", "2026-01-01T10:00:00.000000Z"),
			incoming: candidate("another_blog", "2026-01-01T09:00:00.000000Z"),
			expected: "some_blog@2026-01-01T10:00:00.000000Z",
			desc:     "Unranked sources tie at rank 5",
		},
		{
			existing: candidate("some_blog", "2026-01-01T23:00:00.000000Z"),
			incoming: candidate("general_news", "2026-01-01T01:00:00.000000Z"),
			expected: "general_news@2026-01-01T01:00:00.000000Z",
			desc:     "Ranked beats unranked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := m.Merge(tt.existing, tt.incoming)
			if got.Reason != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got.Reason)
			}
		})
	}
}

func TestMerge_Associative(t *testing.T) {
	m := testMerger()

	cands := []model.Assumption{
		candidate("rotowire_rss", "2026-01-01T10:00:00.000000Z"),
		candidate("realgm_rss", "2026-01-01T10:00:00.000000Z"),
		candidate("general_news", "2026-01-01T20:00:00.000000Z"),
		candidate("underdog_nba_twitter", "2026-01-01T09:00:00.000000Z"),
		candidate("realgm_rss", "2026-01-01T11:00:00.000000Z"),
	}

	for i := range cands {
		for j := range cands {
			for k := range cands {
				a, b, c := cands[i], cands[j], cands[k]
				left := m.Merge(m.Merge(a, b), c)
				right := m.Merge(a, m.Merge(b, c))
				if left.Reason != right.Reason {
					t.Errorf("Merge not associative for (%s, %s, %s): %s vs %s",
						a.Reason, b.Reason, c.Reason, left.Reason, right.Reason)
				}
			}
		}
	}
}

func TestFold(t *testing.T) {
	m := testMerger()

	other := candidate("general_news", "2026-01-01T08:00:00.000000Z")
	other.PlayerID = 201939

	withGame := candidate("general_news", "2026-01-01T08:00:00.000000Z")
	withGame.GameID = "0022500001"

	out := m.Fold([]model.Assumption{
		candidate("beat_writer_twitter", "2026-01-01T10:00:00.000000Z"),
		other,
		candidate("official_nba_injury_report", "2026-01-01T09:00:00.000000Z"),
		withGame,
		candidate("rotowire_rss", "2026-01-01T12:00:00.000000Z"),
	})

	if len(out) != 3 {
		t.Fatalf("Expected 3 keys, got %d", len(out))
	}
	if out[0].Source != "official_nba_injury_report" {
		t.Errorf("Expected official report to survive, got %s", out[0].Source)
	}
	if out[1].PlayerID != 201939 {
		t.Errorf("Expected second key to be player 201939, got %d", out[1].PlayerID)
	}
	if out[2].GameID != "0022500001" {
		t.Errorf("Expected game-scoped key kept separate, got %+v", out[2])
	}

	if m.Fold(nil) != nil {
		t.Error("Expected nil fold of nil input")
	}
}

func TestLedger_Offer(t *testing.T) {
	l := NewLedger(testMerger())

	if !l.Offer(candidate("rotowire_rss", "2026-01-01T10:00:00.000000Z")) {
		t.Error("Expected first candidate accepted")
	}
	if l.Offer(candidate("general_news", "2026-01-01T11:00:00.000000Z")) {
		t.Error("Expected lower-ranked candidate rejected")
	}
	if !l.Offer(candidate("official_nba_injury_report", "2026-01-01T09:00:00.000000Z")) {
		t.Error("Expected official candidate accepted")
	}

	got, ok := l.Get(model.Key{PlayerID: 2544})
	if !ok || got.Source != "official_nba_injury_report" {
		t.Errorf("Expected official survivor, got %+v", got)
	}
	if l.Superseded() != 2 {
		t.Errorf("Expected 2 superseded, got %d", l.Superseded())
	}
}

func TestLedger_ConcurrentOffers(t *testing.T) {
	l := NewLedger(testMerger())
	sources := []string{"general_news", "rotowire_rss", "official_nba_injury_report", "beat_writer_twitter"}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := candidate(sources[i%len(sources)], "2026-01-01T10:00:00.000000Z")
			a.PlayerID = int64(i % 4)
			l.Offer(a)
		}(i)
	}
	wg.Wait()

	survivors := l.Survivors()
	if len(survivors) != 4 {
		t.Fatalf("Expected 4 survivors, got %d", len(survivors))
	}
	for i, a := range survivors {
		if a.PlayerID != int64(i) {
			t.Errorf("Expected survivors sorted by player, got %d at %d", a.PlayerID, i)
		}
	}
	if l.Superseded() != 36 {
		t.Errorf("Expected 36 superseded, got %d", l.Superseded())
	}
}

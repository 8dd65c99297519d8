package priority

import (
	"testing"

	"github.com/ppiankov/injurywire/internal/model"
)

func TestTable_DefaultRanks(t *testing.T) {
	table := NewTable(model.DefaultConfig().Priorities)

	tests := []struct {
		source   string
		expected int
		desc     string
	}{
		{source: "official_nba_injury_report", expected: 1, desc: "Official report is most authoritative"},
		{source: "underdog_nba_twitter", expected: 2, desc: "Fast alert account"},
		{source: "rotowire_rss", expected: 2, desc: "RotoWire feed"},
		{source: "beat_writer_twitter", expected: 3, desc: "Beat writers"},
		{source: "general_news", expected: 4, desc: "General news"},
		{source: "some_blog", expected: Unranked, desc: "Unknown source defaults to lowest rank"},
		{source: "", expected: Unranked, desc: "Empty source"},
		{source: "  RotoWire_RSS ", expected: 2, desc: "Case and whitespace insensitive"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := table.Rank(tt.source); got != tt.expected {
				t.Errorf("Expected rank %d for %q, got %d", tt.expected, tt.source, got)
			}
		})
	}
}

func TestTable_IgnoresInvalidRanks(t *testing.T) {
	table := NewTable(map[string]int{"zero": 0, "negative": -1, "good": 2})

	if table.Known("zero") || table.Known("negative") {
		t.Error("Expected non-positive ranks to be ignored")
	}
	if table.Rank("zero") != Unranked {
		t.Errorf("Expected Unranked for ignored source, got %d", table.Rank("zero"))
	}
	if !table.Known("good") {
		t.Error("Expected good to be known")
	}
}

func TestTable_Nil(t *testing.T) {
	var table *Table
	if table.Rank("official_nba_injury_report") != Unranked {
		t.Error("Expected nil table to rank everything as Unranked")
	}
	if table.Sources() != nil {
		t.Error("Expected nil sources from nil table")
	}
}

func TestTable_Sources(t *testing.T) {
	table := NewTable(map[string]int{"b": 2, "a": 2, "c": 1})
	got := table.Sources()
	expected := []string{"c", "a", "b"}

	if len(got) != len(expected) {
		t.Fatalf("Expected %d sources, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, got[i])
		}
	}
}

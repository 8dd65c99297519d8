package model

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		desc   string
		raw    string
		wantOK bool
	}{
		{desc: "fixed layout", raw: "2024-01-15T18:30:00.000000Z", wantOK: true},
		{desc: "RFC3339", raw: "2024-01-15T18:30:00Z", wantOK: true},
		{desc: "RFC3339 with offset", raw: "2024-01-15T13:30:00-05:00", wantOK: true},
		{desc: "RFC1123Z feed date", raw: "Mon, 15 Jan 2024 18:30:00 +0000", wantOK: true},
		{desc: "naive ISO", raw: "2024-01-15T18:30:00", wantOK: true},
		{desc: "surrounding space", raw: "  2024-01-15 18:30:00 ", wantOK: true},
		{desc: "empty", raw: ""},
		{desc: "garbage", raw: "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := ParseTime(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && !got.Equal(want) {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}
}

func TestFormatTimestampSortsLexically(t *testing.T) {
	early := FormatTimestamp(time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC))
	late := FormatTimestamp(time.Date(2024, 1, 15, 18, 30, 0, 123000, time.UTC))

	if len(early) != len(late) {
		t.Errorf("Expected fixed width, got %q and %q", early, late)
	}
	if early >= late {
		t.Errorf("Expected %q < %q", early, late)
	}
	if late != "2024-01-15T18:30:00.000123Z" {
		t.Errorf("Expected microsecond layout, got %q", late)
	}
}

func TestObservedAt(t *testing.T) {
	tests := []struct {
		desc   string
		item   RawItem
		want   string
		wantOK bool
	}{
		{
			desc:   "published wins",
			item:   RawItem{PublishedAt: "2024-01-15T18:30:00Z", FetchedAt: "2024-01-15T19:00:00Z"},
			want:   "2024-01-15T18:30:00.000000Z",
			wantOK: true,
		},
		{
			desc:   "fetched fallback",
			item:   RawItem{PublishedAt: "not a date", FetchedAt: "2024-01-15T19:00:00Z"},
			want:   "2024-01-15T19:00:00.000000Z",
			wantOK: true,
		},
		{
			desc: "neither",
			item: RawItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := tt.item.ObservedAt()
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && FormatTimestamp(got) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, FormatTimestamp(got))
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	if got := (Key{PlayerID: 2544}).String(); got != "2544" {
		t.Errorf("Expected 2544, got %q", got)
	}
	if got := (Assumption{PlayerID: 2544, GameID: "0022300611"}).Key().String(); got != "2544/0022300611" {
		t.Errorf("Expected 2544/0022300611, got %q", got)
	}
}

func TestConfidenceForPriority(t *testing.T) {
	tests := []struct {
		priority int
		want     Confidence
	}{
		{1, ConfidenceHigh},
		{2, ConfidenceMedium},
		{3, ConfidenceLow},
		{5, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := ConfidenceForPriority(tt.priority); got != tt.want {
			t.Errorf("Expected %s for priority %d, got %s", tt.want, tt.priority, got)
		}
	}
}

func TestNearLockAndIntervals(t *testing.T) {
	window := NearLockConfig{StartHour: 16, EndHour: 22}
	at := func(hour int) time.Time { return time.Date(2024, 1, 15, hour, 30, 0, 0, time.Local) }

	for hour, want := range map[int]bool{15: false, 16: true, 22: true, 23: false} {
		if got := window.Active(at(hour)); got != want {
			t.Errorf("Expected Active(%d:30)=%v, got %v", hour, want, got)
		}
	}

	feed := FeedConfig{PollIntervalMinutes: 10, NearLockIntervalMinutes: 2}
	if got := feed.Interval(false); got != 10*time.Minute {
		t.Errorf("Expected 10m normal interval, got %v", got)
	}
	if got := feed.Interval(true); got != 2*time.Minute {
		t.Errorf("Expected 2m near-lock interval, got %v", got)
	}
	if got := (FeedConfig{PollIntervalMinutes: 30}).Interval(true); got != 30*time.Minute {
		t.Errorf("Expected fallback to normal interval, got %v", got)
	}
}

func TestSignalActionable(t *testing.T) {
	if (Signal{PlayerName: "LeBron James"}).Actionable() {
		t.Error("Expected signal without keywords to be non-actionable")
	}
	if !(Signal{PlayerName: "LeBron James", Minutes: MinutesRestriction}).Actionable() {
		t.Error("Expected minutes keyword to make signal actionable")
	}
}

func TestReportEntryLine(t *testing.T) {
	e := &ReportEntry{PlayerName: "James, LeBron", Status: "Out", Reason: "Left Ankle; Sprain"}
	if got := e.Line(); got != "James, LeBron - Out - Left Ankle; Sprain" {
		t.Errorf("Unexpected line: %q", got)
	}
}

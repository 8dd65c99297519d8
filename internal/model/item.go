package model

import (
	"strings"
	"time"
)

// ItemKind identifies which kind of collector produced a RawItem
type ItemKind string

const (
	ItemKindRSS      ItemKind = "rss"      // RSS/Atom news feed entry
	ItemKindTweet    ItemKind = "tweet"    // Social post relayed through an RSS bridge
	ItemKindOfficial ItemKind = "official" // Official injury report row
	ItemKindFile     ItemKind = "file"     // Item loaded from a JSON Lines file
)

// TimestampLayout is the fixed-width UTC layout used for all stored timestamps.
// Fixed width keeps lexical order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// RawItem is the uniform payload every collector produces
type RawItem struct {
	Text           string       `json:"text"`            // Title + description, tweet body, or report line
	Source         string       `json:"source"`          // Source identifier (e.g., "rotowire_rss")
	SourcePriority int          `json:"source_priority"` // 1 = most authoritative
	PublishedAt    string       `json:"published_at"`
	FetchedAt      string       `json:"fetched_at"`
	DedupKey       string       `json:"dedup_key"` // Opaque content hash
	Kind           ItemKind     `json:"kind,omitempty"`
	Link           string       `json:"link,omitempty"`
	GameID         string       `json:"game_id,omitempty"`
	Report         *ReportEntry `json:"report,omitempty"` // Structured row for official reports
}

// ReportEntry is one row of an official injury report
type ReportEntry struct {
	PlayerName string `json:"player_name"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Team       string `json:"team,omitempty"`
	Matchup    string `json:"matchup,omitempty"`
	GameDate   string `json:"game_date,omitempty"`
	GameTime   string `json:"game_time,omitempty"`
}

// Line renders the entry the way it is echoed into raw_text
func (e *ReportEntry) Line() string {
	return e.PlayerName + " - " + e.Status + " - " + e.Reason
}

// ObservedAt returns the best known time the item's content was observed:
// the publish time when parseable, else the fetch time. ok is false when
// neither parses.
func (i RawItem) ObservedAt() (time.Time, bool) {
	for _, raw := range []string{i.PublishedAt, i.FetchedAt} {
		if t, ok := ParseTime(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

var timeLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp formats seen across feeds and reports
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

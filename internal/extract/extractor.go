package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/injurywire/internal/model"
)

var injuryDetailPattern = regexp.MustCompile(`(?i)\(([^)]*(?:injury|strain|sprain|tear|fracture|surgery|illness|covid)[^)]*)\)`)

const (
	windowBefore = 20
	windowAfter  = 30
)

// Extractor turns raw items into categorical signals
type Extractor struct{}

// NewExtractor creates a new keyword extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract interprets one item. ok is false when no player name is found.
// Items carrying a structured report entry bypass text scanning.
func (e *Extractor) Extract(item model.RawItem) (model.Signal, bool) {
	var sig model.Signal
	var ok bool
	if item.Report != nil {
		sig, ok = e.fromReport(item.Report)
	} else {
		sig, ok = e.ExtractText(item.Text, item.SourcePriority)
	}
	if !ok {
		return model.Signal{}, false
	}

	sig.Source = item.Source
	sig.GameID = item.GameID
	if t, found := item.ObservedAt(); found {
		sig.ObservedAt = model.FormatTimestamp(t)
	}
	return sig, true
}

// ExtractText scans free text. Confidence follows the source priority.
func (e *Extractor) ExtractText(text string, sourcePriority int) (model.Signal, bool) {
	text = VisibleText(text)

	name := FirstPlayerName(text)
	if name == "" {
		return model.Signal{}, false
	}

	lower := strings.ToLower(text)
	return model.Signal{
		PlayerName:   name,
		Status:       match(lower, statusRules),
		Minutes:      match(lower, minutesRules),
		Lineup:       match(lower, lineupRules),
		InjuryDetail: InjuryDetail(text),
		Confidence:   model.ConfidenceForPriority(sourcePriority),
		RawText:      text,
	}, true
}

func (e *Extractor) fromReport(entry *model.ReportEntry) (model.Signal, bool) {
	name := reportName(entry.PlayerName)
	if name == "" {
		return model.Signal{}, false
	}
	normalized := *entry
	normalized.PlayerName = name

	return model.Signal{
		PlayerName:   name,
		Status:       NormalizeStatus(entry.Status),
		InjuryDetail: strings.TrimSpace(entry.Reason),
		Confidence:   model.ConfidenceHigh,
		RawText:      normalized.Line(),
	}, true
}

// InjuryDetail returns a parenthetical injury clause, else a window of text
// around the first body part found in table order, else ""
func InjuryDetail(text string) string {
	if m := injuryDetailPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	runes := []rune(text)
	lowerText := string(lowerRunes(runes))

	for _, part := range injuryParts {
		idx := strings.Index(lowerText, part)
		if idx < 0 {
			continue
		}
		pos := len([]rune(lowerText[:idx]))
		start := max(0, pos-windowBefore)
		end := min(len(runes), pos+windowAfter)
		return strings.TrimSpace(string(runes[start:end]))
	}
	return ""
}

// lowerRunes lowercases rune by rune so indexes stay aligned with the input
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

package assume

import (
	"strings"
	"time"

	"github.com/ppiankov/injurywire/internal/model"
)

// nowFunc is the synthesizer clock; overridden in tests
var nowFunc = time.Now

const (
	reasonExcerptRunes = 100
	defaultReason      = "News update"
)

type statusEffect struct {
	multiplier float64
	confidence model.Confidence
}

var statusEffects = map[model.StatusKeyword]statusEffect{
	model.StatusOut:          {0.0, model.ConfidenceHigh},
	model.StatusDoubtful:     {0.25, model.ConfidenceLow},
	model.StatusQuestionable: {0.85, model.ConfidenceLow},
	model.StatusProbable:     {0.95, model.ConfidenceMedium},
	model.StatusAvailable:    {1.0, model.ConfidenceHigh},
}

// minutesCaps has no entry for FULL_GO, which leaves the assumption untouched
var minutesCaps = map[model.MinutesKeyword]int{
	model.MinutesRestriction: 24,
	model.MinutesLimited:     28,
}

// lineupMultipliers has no entry for STARTING_LINEUP
var lineupMultipliers = map[model.LineupKeyword]float64{
	model.LineupStarting: 1.15,
	model.LineupBench:    0.75,
}

// Synthesizer turns resolved signals into quantitative assumptions
type Synthesizer struct{}

// NewSynthesizer creates a new synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize applies the status, minutes and lineup tables in that order.
// ok is false when the signal carries no actionable keyword.
func (s *Synthesizer) Synthesize(rs model.ResolvedSignal) (model.Assumption, bool) {
	sig := rs.Signal

	var typ model.AssumptionType
	switch {
	case sig.Status != "":
		typ = model.AssumptionInjuryStatus
	case sig.Minutes != "":
		typ = model.AssumptionMinutesCap
	case sig.Lineup != "":
		typ = model.AssumptionLineupChange
	default:
		return model.Assumption{}, false
	}

	raw := sig
	a := model.Assumption{
		PlayerID:   rs.PlayerID,
		GameID:     sig.GameID,
		Type:       typ,
		Confidence: sig.Confidence,
		Reason:     buildReason(sig),
		Source:     sig.Source,
		Timestamp:  sig.ObservedAt,
		RawSignal:  &raw,
	}
	if a.Timestamp == "" {
		a.Timestamp = model.FormatTimestamp(nowFunc())
	}

	if effect, ok := statusEffects[sig.Status]; ok {
		a.MinutesMultiplier = model.Float(effect.multiplier)
		a.Confidence = effect.confidence
	}

	if limit, ok := minutesCaps[sig.Minutes]; ok {
		a.MinutesCap = model.Int(limit)
		a.Confidence = model.ConfidenceMedium
	}

	if multiplier, ok := lineupMultipliers[sig.Lineup]; ok {
		a.MinutesMultiplier = model.Float(multiplier)
		a.Confidence = model.ConfidenceMedium
	}

	// OUT is terminal
	if sig.Status == model.StatusOut {
		a.MinutesMultiplier = model.Float(0.0)
		a.Confidence = model.ConfidenceHigh
	}

	if a.Confidence == "" {
		a.Confidence = model.ConfidenceVeryLow
	}
	a.RequiresVerification = a.Confidence == model.ConfidenceLow || a.Confidence == model.ConfidenceVeryLow

	return a, true
}

// buildReason joins the matched keywords and injury detail with " - ",
// then appends an excerpt of the raw text
func buildReason(sig model.Signal) string {
	var parts []string
	if sig.Status != "" {
		parts = append(parts, string(sig.Status))
	}
	if sig.InjuryDetail != "" {
		parts = append(parts, "("+sig.InjuryDetail+")")
	}
	if sig.Minutes != "" {
		parts = append(parts, string(sig.Minutes))
	}
	if sig.Lineup != "" {
		parts = append(parts, string(sig.Lineup))
	}

	reason := defaultReason
	if len(parts) > 0 {
		reason = strings.Join(parts, " - ")
	}

	if sig.RawText != "" {
		reason += " | Source: " + truncateRunes(sig.RawText, reasonExcerptRunes)
	}
	return reason
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

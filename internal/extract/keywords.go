package extract

import (
	"strings"

	"github.com/ppiankov/injurywire/internal/model"
)

// rule maps a keyword category to the literal phrases that signal it
type rule[K ~string] struct {
	keyword K
	phrases []string
}

// Tables are scanned in order; the first category with a phrase present wins.
var statusRules = []rule[model.StatusKeyword]{
	{model.StatusOut, []string{"out", "ruled out", "won't return", "will not play", "sidelined"}},
	{model.StatusQuestionable, []string{"questionable", "game-time decision", "gtd", "game time decision"}},
	{model.StatusDoubtful, []string{"doubtful", "unlikely to play", "not expected to play"}},
	{model.StatusProbable, []string{"probable", "likely to play", "expected to play"}},
	{model.StatusAvailable, []string{"available", "cleared to play", "will play", "active"}},
}

var minutesRules = []rule[model.MinutesKeyword]{
	{model.MinutesRestriction, []string{"minutes restriction", "minutes limit", "limited minutes", "restricted"}},
	{model.MinutesFullGo, []string{"full go", "no restrictions", "unrestricted", "full minutes"}},
	{model.MinutesLimited, []string{"limited", "cautious", "eased back", "monitored"}},
}

var lineupRules = []rule[model.LineupKeyword]{
	{model.LineupStarting, []string{"will start", "starting", "moves into starting lineup", "joins starting lineup"}},
	{model.LineupBench, []string{"moves to bench", "coming off bench", "bench role"}},
	{model.LineupStartingLineup, []string{"starting lineup", "starters"}},
}

// injuryParts is scanned in order for the injury detail window
var injuryParts = []string{
	"ankle", "knee", "hamstring", "back", "shoulder", "wrist", "hand",
	"foot", "calf", "quad", "hip", "groin", "achilles", "finger",
	"elbow", "neck", "head", "concussion", "illness", "covid",
}

// alertKeywords flag social posts worth ingesting
var alertKeywords = []string{
	"status alert", "lineup alert", "injury alert",
	"out", "questionable", "doubtful", "gtd",
	"won't return", "ruled out", "starting lineup", "will start", "moves to bench",
}

// match returns the first category whose phrase list hits the lowercased text
func match[K ~string](lower string, rules []rule[K]) K {
	for _, r := range rules {
		for _, phrase := range r.phrases {
			if strings.Contains(lower, phrase) {
				return r.keyword
			}
		}
	}
	var none K
	return none
}

// MatchStatus returns the status keyword found in text, or ""
func MatchStatus(text string) model.StatusKeyword {
	return match(strings.ToLower(text), statusRules)
}

// MatchMinutes returns the minutes keyword found in text, or ""
func MatchMinutes(text string) model.MinutesKeyword {
	return match(strings.ToLower(text), minutesRules)
}

// MatchLineup returns the lineup keyword found in text, or ""
func MatchLineup(text string) model.LineupKeyword {
	return match(strings.ToLower(text), lineupRules)
}

// ContainsAlert reports whether text carries any alert keyword
func ContainsAlert(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range alertKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// NormalizeStatus maps a report status such as "Out" or "Game Time Decision"
// to a status keyword
func NormalizeStatus(status string) model.StatusKeyword {
	upper := model.StatusKeyword(strings.ToUpper(strings.TrimSpace(status)))
	for _, r := range statusRules {
		if r.keyword == upper {
			return upper
		}
	}
	return MatchStatus(status)
}

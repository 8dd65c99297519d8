package extract

import (
	"regexp"
	"strings"
)

// nameWord matches one capitalized word, including interior capitals
// (LeBron, McCollum), O' prefixes and hyphenated joins.
const nameWord = `(?:\p{Lu}'\p{Lu}\p{Ll}+|\p{Lu}\p{Ll}?\p{Lu}\p{Ll}+|\p{Lu}\p{Ll}+)(?:['-]\p{Lu}\p{Ll}+)?`

// nameRunPattern captures a run of name words not preceded by a letter
var nameRunPattern = regexp.MustCompile(`(?:^|[^\p{L}'])(` + nameWord + `(?:\s+` + nameWord + `)*)`)

const (
	minNameWords = 2
	maxNameWords = 4
)

// denyWords are capitalized fillers that never belong to a player name
var denyWords = toSet(
	// articles, pronouns, modals, prepositions
	"The", "This", "That", "These", "Those", "With", "From", "Will", "Can",
	"Could", "Would", "Should", "May", "Might", "Has", "Had", "Have", "Is",
	"Was", "After", "Before", "Per", "Via", "And", "But", "For", "Sources",
	"Source", "Coach", "Head", "Guard", "Forward", "Center", "Star", "He", "His",
	// days and months
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"Tonight", "Today", "Tomorrow", "January", "February", "March", "April",
	"June", "July", "August", "September", "October", "November", "December",
	// alert and status words
	"Out", "Ruled", "Questionable", "Doubtful", "Probable", "Available",
	"Injury", "Injuries", "Update", "Report", "Status", "Alert", "Lineup",
	"Starting", "Bench", "Breaking", "News", "Game", "Minutes", "Restriction",
	"Expected", "Return", "Returns", "Practice", "Sidelined", "Cleared", "Active",
	// team nicknames
	"Hawks", "Celtics", "Nets", "Hornets", "Bulls", "Cavaliers", "Cavs",
	"Mavericks", "Mavs", "Nuggets", "Pistons", "Warriors", "Rockets", "Pacers",
	"Clippers", "Lakers", "Grizzlies", "Heat", "Bucks", "Timberwolves", "Wolves",
	"Pelicans", "Knicks", "Thunder", "Magic", "Sixers", "Suns", "Blazers",
	"Kings", "Spurs", "Raptors", "Jazz", "Wizards",
)

// givenNameWords are deny words that also open real names (Will Barton).
// They only split a run when a full name follows them.
var givenNameWords = toSet("Will", "May")

// denyPhrases are whole multi-word candidates that are not players
var denyPhrases = toSet(
	"los angeles", "new york", "golden state", "san antonio", "oklahoma city",
	"new orleans", "trail blazers", "salt lake city", "eastern conference",
	"western conference", "all star", "all-star game", "summer league",
	"play-in tournament", "united states",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// PlayerNames returns candidate player names in order of appearance.
// Each run of capitalized words is split at deny words; segments of
// 2-4 words that are not denied phrases survive.
func PlayerNames(text string) []string {
	var names []string
	for _, m := range nameRunPattern.FindAllStringSubmatch(text, -1) {
		for _, segment := range splitRun(strings.Fields(m[1])) {
			if len(segment) < minNameWords {
				continue
			}
			if len(segment) > maxNameWords {
				segment = segment[:maxNameWords]
			}
			candidate := strings.Join(segment, " ")
			if denyPhrases[strings.ToLower(candidate)] {
				continue
			}
			names = append(names, candidate)
		}
	}
	return names
}

// splitRun cuts a run of words at every denied word. A given-name word
// opening a segment is kept when fewer than two name words follow it.
func splitRun(words []string) [][]string {
	var segments [][]string
	var current []string
	for i, w := range words {
		lower := strings.ToLower(w)
		if denyWords[lower] && !(givenNameWords[lower] && len(current) == 0 && leadingNameWords(words[i+1:]) < minNameWords) {
			if len(current) > 0 {
				segments = append(segments, current)
			}
			current = nil
			continue
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// leadingNameWords counts the words before the first denied one
func leadingNameWords(words []string) int {
	for i, w := range words {
		if denyWords[strings.ToLower(w)] {
			return i
		}
	}
	return len(words)
}

// FirstPlayerName returns the first surviving candidate, or ""
func FirstPlayerName(text string) string {
	names := PlayerNames(text)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// reportName converts "Last, First" report names to "First Last"
func reportName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" {
		return last
	}
	return first + " " + last
}

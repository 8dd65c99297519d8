package model

// StatusKeyword is the availability category extracted from text
type StatusKeyword string

const (
	StatusOut          StatusKeyword = "OUT"
	StatusQuestionable StatusKeyword = "QUESTIONABLE"
	StatusDoubtful     StatusKeyword = "DOUBTFUL"
	StatusProbable     StatusKeyword = "PROBABLE"
	StatusAvailable    StatusKeyword = "AVAILABLE"
)

// MinutesKeyword is the playing-time category extracted from text
type MinutesKeyword string

const (
	MinutesRestriction MinutesKeyword = "RESTRICTION"
	MinutesLimited     MinutesKeyword = "LIMITED"
	MinutesFullGo      MinutesKeyword = "FULL_GO"
)

// LineupKeyword is the rotation category extracted from text
type LineupKeyword string

const (
	LineupStarting       LineupKeyword = "STARTING"
	LineupBench          LineupKeyword = "BENCH"
	LineupStartingLineup LineupKeyword = "STARTING_LINEUP"
)

// Confidence grades how much a signal or assumption can be trusted
type Confidence string

const (
	ConfidenceHigh    Confidence = "HIGH"
	ConfidenceMedium  Confidence = "MEDIUM"
	ConfidenceLow     Confidence = "LOW"
	ConfidenceVeryLow Confidence = "VERY_LOW"
)

// ConfidenceForPriority maps a declared source priority to a confidence
func ConfidenceForPriority(priority int) Confidence {
	switch priority {
	case 1:
		return ConfidenceHigh
	case 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Signal is the categorical interpretation of one RawItem.
// Empty keyword fields mean the category was not found.
type Signal struct {
	PlayerName   string         `json:"player_name"`
	Status       StatusKeyword  `json:"status_keyword,omitempty"`
	Minutes      MinutesKeyword `json:"minutes_keyword,omitempty"`
	Lineup       LineupKeyword  `json:"lineup_keyword,omitempty"`
	InjuryDetail string         `json:"injury_detail,omitempty"`
	Confidence   Confidence     `json:"confidence"`
	RawText      string         `json:"raw_text"`

	Source     string `json:"source,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	ObservedAt string `json:"observed_at,omitempty"`
}

// Actionable reports whether at least one keyword category matched
func (s Signal) Actionable() bool {
	return s.Status != "" || s.Minutes != "" || s.Lineup != ""
}

// ResolvedSignal is a Signal whose player name mapped to a player id
type ResolvedSignal struct {
	Signal
	PlayerID int64   `json:"player_id"`
	Strategy string  `json:"strategy,omitempty"` // exact, alias, or fuzzy
	Score    float64 `json:"score,omitempty"`
}

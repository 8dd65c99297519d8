package model

import "strconv"

// AssumptionType names which adjustment an Assumption primarily expresses
type AssumptionType string

const (
	AssumptionInjuryStatus AssumptionType = "injury_status"
	AssumptionMinutesCap   AssumptionType = "minutes_cap"
	AssumptionLineupChange AssumptionType = "lineup_change"
)

// Assumption is a quantitative projection adjustment for one player
type Assumption struct {
	PlayerID int64          `json:"player_id"`
	GameID   string         `json:"game_id,omitempty"`
	Type     AssumptionType `json:"assumption_type"`

	MinutesMultiplier *float64 `json:"minutes_multiplier,omitempty"` // 0.0-1.0, >1.0 for upside
	MinutesCap        *int     `json:"minutes_cap,omitempty"`        // Hard ceiling in minutes

	Confidence           Confidence `json:"confidence_level"`
	RequiresVerification bool       `json:"requires_verification"`

	Reason    string `json:"reason"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"` // TimestampLayout, sortable lexically

	RawSignal *Signal `json:"raw_signal,omitempty"`
}

// Key identifies the slot an assumption competes for
type Key struct {
	PlayerID int64  `json:"player_id"`
	GameID   string `json:"game_id,omitempty"`
}

// String renders the key as "player[/game]"
func (k Key) String() string {
	s := strconv.FormatInt(k.PlayerID, 10)
	if k.GameID != "" {
		s += "/" + k.GameID
	}
	return s
}

// Key returns the merge key of the assumption
func (a Assumption) Key() Key {
	return Key{PlayerID: a.PlayerID, GameID: a.GameID}
}

// Float returns a pointer to v, for optional numeric fields
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional numeric fields
func Int(v int) *int { return &v }

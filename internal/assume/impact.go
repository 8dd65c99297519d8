package assume

import (
	"fmt"

	"github.com/ppiankov/injurywire/internal/model"
)

// Impact summarizes how an assumption moves a player's projection
type Impact struct {
	PlayerID      int64                `json:"player_id"`
	GameID        string               `json:"game_id,omitempty"`
	ImpactType    model.AssumptionType `json:"impact_type"`
	Confidence    model.Confidence     `json:"confidence"`
	Reason        string               `json:"reason"`
	MinutesImpact string               `json:"minutes_impact,omitempty"` // e.g. "85%"
	MinutesCap    *int                 `json:"minutes_cap,omitempty"`
}

// ImpactOf builds the impact summary of an assumption
func ImpactOf(a model.Assumption) Impact {
	impact := Impact{
		PlayerID:   a.PlayerID,
		GameID:     a.GameID,
		ImpactType: a.Type,
		Confidence: a.Confidence,
		Reason:     a.Reason,
		MinutesCap: a.MinutesCap,
	}
	if a.MinutesMultiplier != nil {
		impact.MinutesImpact = fmt.Sprintf("%.0f%%", *a.MinutesMultiplier*100)
	}
	return impact
}

// KeyVals flattens the impact for structured logging
func (i Impact) KeyVals() []interface{} {
	kv := []interface{}{
		"player_id", i.PlayerID,
		"type", i.ImpactType,
		"confidence", i.Confidence,
	}
	if i.GameID != "" {
		kv = append(kv, "game_id", i.GameID)
	}
	if i.MinutesImpact != "" {
		kv = append(kv, "minutes_impact", i.MinutesImpact)
	}
	if i.MinutesCap != nil {
		kv = append(kv, "minutes_cap", *i.MinutesCap)
	}
	return kv
}

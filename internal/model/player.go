package model

// Player is one entry of the player directory
type Player struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Team   string `json:"team,omitempty" yaml:"team,omitempty"`
	Active bool   `json:"active" yaml:"active"`
}

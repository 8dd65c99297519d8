package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultAliases maps common nicknames to canonical player names
var defaultAliases = map[string]string{
	"LeBron":        "LeBron James",
	"Bron":          "LeBron James",
	"King James":    "LeBron James",
	"Giannis":       "Giannis Antetokounmpo",
	"Greek Freak":   "Giannis Antetokounmpo",
	"KD":            "Kevin Durant",
	"Steph":         "Stephen Curry",
	"Chef Curry":    "Stephen Curry",
	"Luka":          "Luka Doncic",
	"Jokic":         "Nikola Jokic",
	"Joker":         "Nikola Jokic",
	"AD":            "Anthony Davis",
	"PG":            "Paul George",
	"PG13":          "Paul George",
	"Dame":          "Damian Lillard",
	"Dame Time":     "Damian Lillard",
	"Kawhi":         "Kawhi Leonard",
	"The Klaw":      "Kawhi Leonard",
	"Embiid":        "Joel Embiid",
	"The Process":   "Joel Embiid",
	"Harden":        "James Harden",
	"The Beard":     "James Harden",
	"Kyrie":         "Kyrie Irving",
	"Uncle Drew":    "Kyrie Irving",
	"Jimmy":         "Jimmy Butler",
	"Jimmy Buckets": "Jimmy Butler",
	"Tatum":         "Jayson Tatum",
	"JT":            "Jayson Tatum",
	"Booker":        "Devin Booker",
	"Book":          "Devin Booker",
	"Zion":          "Zion Williamson",
	"Ja":            "Ja Morant",
	"Trae":          "Trae Young",
	"Ice Trae":      "Trae Young",
	"SGA":           "Shai Gilgeous-Alexander",
	"Ant":           "Anthony Edwards",
	"Ant-Man":       "Anthony Edwards",
	"Wemby":         "Victor Wembanyama",
	"Alien":         "Victor Wembanyama",
}

// DefaultAliases returns a copy of the built-in nickname table
func DefaultAliases() map[string]string {
	out := make(map[string]string, len(defaultAliases))
	for alias, name := range defaultAliases {
		out[alias] = name
	}
	return out
}

// LoadAliases reads an alias -> canonical name YAML mapping
func LoadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}

	aliases := make(map[string]string)
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	return aliases, nil
}

// Package leveling holds the static XP threshold table and the
// level-gated customization catalogue.
package leveling

// Thresholds are the cumulative XP required for each level. Index 0 is level 1.
var Thresholds = []int{0, 100, 250, 500, 800, 1200, 1700, 2300, 3000, 4000}

// Customization is a cosmetic item unlocked by reaching a level
type Customization struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Customizations is the catalogue of unlockable items, ordered by level
var Customizations = []Customization{
	{ID: "party_hat", Name: "Party Hat", Level: 2},
	{ID: "sunglasses", Name: "Cool Shades", Level: 5},
}

// MaxLevel is the highest attainable level
func MaxLevel() int {
	return len(Thresholds)
}

// LevelForXP returns the highest level whose threshold xp has reached.
// Negative xp is treated as zero, so the result is always at least 1.
func LevelForXP(xp int) int {
	level := 1
	for i := 1; i < len(Thresholds); i++ {
		if xp < Thresholds[i] {
			break
		}
		level = i + 1
	}
	return level
}

// Threshold returns the cumulative XP required to reach level.
// Levels outside [1, MaxLevel] are clamped.
func Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel() {
		level = MaxLevel()
	}
	return Thresholds[level-1]
}

// NextThreshold returns the XP required for the level after level.
// ok is false at max level.
func NextThreshold(level int) (xp int, ok bool) {
	if level < 1 {
		level = 1
	}
	if level >= MaxLevel() {
		return 0, false
	}
	return Thresholds[level], true
}

// Progress returns how far xp is between its level's threshold and the next, in [0, 1]
func Progress(xp int) float64 {
	level := LevelForXP(xp)
	next, ok := NextThreshold(level)
	if !ok {
		return 1
	}
	floor := Threshold(level)
	if xp < floor {
		return 0
	}
	return float64(xp-floor) / float64(next-floor)
}

// UnlocksAt returns the customizations bound to exactly level
func UnlocksAt(level int) []Customization {
	var out []Customization
	for _, c := range Customizations {
		if c.Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds a customization by id
func Lookup(id string) (Customization, bool) {
	for _, c := range Customizations {
		if c.ID == id {
			return c, true
		}
	}
	return Customization{}, false
}

package streak

import (
	"strings"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Weather conditions understood by the compulsory habit table
const (
	WeatherCold  = "cold"
	WeatherRainy = "rainy"
	WeatherHot   = "hot"
	WeatherMild  = "mild"
)

var compulsoryByWeather = map[string][]state.CompulsoryHabit{
	WeatherCold:  {{ID: "compulsory-cold", Name: "Wear warm clothes", Weather: WeatherCold, XP: 30}},
	WeatherRainy: {{ID: "compulsory-rainy", Name: "Pack an umbrella", Weather: WeatherRainy, XP: 20}},
	WeatherHot:   {{ID: "compulsory-hot", Name: "Drink an extra bottle of water", Weather: WeatherHot, XP: 30}},
}

// CompulsoryHabitsFor returns a fresh set of compulsory habits for a weather
// condition. Unknown and mild conditions yield none.
func CompulsoryHabitsFor(condition string) []state.CompulsoryHabit {
	habits := compulsoryByWeather[strings.ToLower(strings.TrimSpace(condition))]
	return append([]state.CompulsoryHabit{}, habits...)
}

// ResetDoses zeroes the daily dose counter when now is a new day relative
// to the last dose. Returns true if the counter changed.
func (c Calendar) ResetDoses(s *state.BuddyState, now time.Time) bool {
	if s.Medication.DosesTakenToday == 0 {
		return false
	}
	if !c.NewDay(s.LastMedDoseTimestamp, now) {
		return false
	}
	s.Medication.DosesTakenToday = 0
	return true
}

// NeedsCompulsoryRefresh reports whether the compulsory habits are due to be
// regenerated for the day of now
func (c Calendar) NeedsCompulsoryRefresh(s *state.BuddyState, now time.Time) bool {
	return c.NewDay(s.LastWeatherCheck, now)
}

// RefreshCompulsory replaces the compulsory habits wholesale for condition
// and stamps the weather check. Returns the new habits.
func (c Calendar) RefreshCompulsory(s *state.BuddyState, condition string, now time.Time) []state.CompulsoryHabit {
	s.CompulsoryHabits = CompulsoryHabitsFor(condition)
	s.LastWeatherCheck = now
	return s.CompulsoryHabits
}

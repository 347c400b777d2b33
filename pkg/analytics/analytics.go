// Package analytics derives progress summaries from buddy state and the daily
// completion counters.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/leveling"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"
	"github.com/AccelByte/extend-buddy-progression/pkg/streak"
)

const (
	// WeekDays is the look-back window for weekly figures
	WeekDays = 7
	// SleepWindow is the number of most recent nights summarized
	SleepWindow = 14
)

// Category groups habits for the category breakdown
type Category string

const (
	CategoryHydration Category = "Hydration"
	CategoryPhysical  Category = "Physical"
	CategoryMental    Category = "Mental"
	CategoryGut       Category = "Gut"
	CategoryGeneral   Category = "General"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryHydration, []string{"water", "hydrate"}},
	{CategoryPhysical, []string{"walk", "run", "gym", "exercise"}},
	{CategoryMental, []string{"read", "study", "meditate"}},
	{CategoryGut, []string{"fiber", "veg"}},
}

// Categorize picks a habit's category from keywords in its name
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}

// DayCount is the number of completions on one calendar day
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SleepSummary aggregates the most recent sleep logs
type SleepSummary struct {
	Nights         int     `json:"nights"`
	AverageQuality float64 `json:"averageQuality"`
	AverageHours   float64 `json:"averageHours"`
	GoodNights     int     `json:"goodNights"`
	SleepDebt      int     `json:"sleepDebt"`
}

// Summary is the analytics view of one buddy
type Summary struct {
	Health           float64          `json:"health"`
	Level            int              `json:"level"`
	XP               int              `json:"xp"`
	LevelProgress    float64          `json:"levelProgress"`
	Streak           int              `json:"streak"`
	MedicationStreak int              `json:"medicationStreak"`
	HabitCount       int              `json:"habitCount"`
	Categories       map[Category]int `json:"categories"`
	// WeeklyCompletion is the percentage of habits completed in the last 7 days
	WeeklyCompletion     int          `json:"weeklyCompletion"`
	CompletionsLast7Days int          `json:"completionsLast7Days"`
	CompletionsByDay     []DayCount   `json:"completionsByDay"`
	Sleep                SleepSummary `json:"sleep"`
}

// Summarize builds the analytics summary at now. completions maps
// YYYY-MM-DD day keys to completion counts and may be nil.
func Summarize(s *state.BuddyState, completions map[string]int, cal streak.Calendar, now time.Time) Summary {
	sum := Summary{
		Health:           s.Health,
		Level:            s.Level,
		XP:               s.XP,
		LevelProgress:    leveling.Progress(s.XP),
		Streak:           s.Streak,
		MedicationStreak: s.Medication.Streak,
		HabitCount:       len(s.Habits),
		Categories:       make(map[Category]int),
	}

	weekAgo := now.AddDate(0, 0, -WeekDays)
	completedThisWeek := 0
	for _, h := range s.Habits {
		sum.Categories[Categorize(h.Name)]++
		if h.LastCompleted.After(weekAgo) {
			completedThisWeek++
		}
	}
	if len(s.Habits) > 0 {
		sum.WeeklyCompletion = int(math.Round(float64(completedThisWeek) / float64(len(s.Habits)) * 100))
	}

	sum.CompletionsByDay = lastDays(completions, cal, now)
	for _, d := range sum.CompletionsByDay {
		sum.CompletionsLast7Days += d.Count
	}

	sum.Sleep = summarizeSleep(s)
	return sum
}

// lastDays returns the counts for the last WeekDays days ending today, oldest
// first, with missing days as zero
func lastDays(completions map[string]int, cal streak.Calendar, now time.Time) []DayCount {
	days := make([]DayCount, 0, WeekDays)
	for i := WeekDays - 1; i >= 0; i-- {
		key := cal.DayKey(now.AddDate(0, 0, -i))
		days = append(days, DayCount{Day: key, Count: completions[key]})
	}
	return days
}

func summarizeSleep(s *state.BuddyState) SleepSummary {
	logs := s.SleepLogs
	if len(logs) > SleepWindow {
		logs = logs[len(logs)-SleepWindow:]
	}

	out := SleepSummary{Nights: len(logs), SleepDebt: s.SleepDebt}
	if len(logs) == 0 {
		return out
	}

	var quality, hours float64
	for _, l := range logs {
		quality += float64(l.Quality)
		hours += l.Hours
		if engine.IsGoodSleep(l.Quality, l.Hours) {
			out.GoodNights++
		}
	}
	out.AverageQuality = round2(quality / float64(len(logs)))
	out.AverageHours = round2(hours / float64(len(logs)))
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Insight renders the summary as a one-line digest
func (s Summary) Insight() string {
	return fmt.Sprintf("Current streak is %d days. User has %d habits with a weekly completion rate of %d%%. Current sleep debt is %d.",
		s.Streak, s.HabitCount, s.WeeklyCompletion, s.Sleep.SleepDebt)
}

// TopCategory returns the category with the most habits, ties broken by name
func (s Summary) TopCategory() (Category, bool) {
	if len(s.Categories) == 0 {
		return "", false
	}
	cats := make([]Category, 0, len(s.Categories))
	for c := range s.Categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if s.Categories[cats[i]] != s.Categories[cats[j]] {
			return s.Categories[cats[i]] > s.Categories[cats[j]]
		}
		return cats[i] < cats[j]
	})
	return cats[0], true
}

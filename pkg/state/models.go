// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"math"
	"time"
)

const (
	// MaxHealth is the upper bound for health and every sub-stat
	MaxHealth = 100.0
	// MaxSleepLogs is the size of the sleep log ring
	MaxSleepLogs = 30
	// MinDecayMultiplier is the floor reached by stacking same-day boosters
	MinDecayMultiplier = 0.25
)

// BuddyState is the complete progression state for a user's buddy
type BuddyState struct {
	Health          float64  `json:"health"`
	XP              int      `json:"xp"`
	Level           int      `json:"level"`
	SubStats        SubStats `json:"subStats"`
	Streak          int      `json:"streak"`
	DecayMultiplier float64  `json:"decayMultiplier"`
	SleepDebt       int      `json:"sleepDebt"`

	LastActive              time.Time `json:"lastActive"`
	LastVitaminLog          time.Time `json:"lastVitaminLog"`
	LastPhysicalActivityLog time.Time `json:"lastPhysicalActivityLog"`
	LastSleepLog            time.Time `json:"lastSleepLog"`
	LastWeatherCheck        time.Time `json:"lastWeatherCheck"`
	LastMedDoseTimestamp    time.Time `json:"lastMedDoseTimestamp"`
	LastCompletedMedDay     time.Time `json:"lastCompletedMedDay"`

	Medication MedicationState `json:"medication"`

	UnlockedCustomizationIDs []string `json:"unlockedCustomizationIds"`
	ActiveCustomizationID    *string  `json:"activeCustomizationId"`

	Habits           []Habit           `json:"habits"`
	CompulsoryHabits []CompulsoryHabit `json:"compulsoryHabits"`
	SleepLogs        []SleepLog        `json:"sleepLogs"`

	Profile     Profile   `json:"profile"`
	Survey      *Survey   `json:"survey,omitempty"`
	OnboardedAt time.Time `json:"onboardedAt"`
	OpenCount   int       `json:"openCount"`
	LastOpened  time.Time `json:"lastOpened"`
}

// SubStats are the four wellness scores and their rounded mean
type SubStats struct {
	Hydration float64 `json:"hydration"`
	Activity  float64 `json:"activity"`
	Mental    float64 `json:"mental"`
	Gut       float64 `json:"gut"`
	Overall   int     `json:"overall"`
}

// MedicationState tracks daily dose adherence
type MedicationState struct {
	Enabled         bool `json:"enabled"`
	DosesPerDay     int  `json:"dosesPerDay"`
	DosesTakenToday int  `json:"dosesTakenToday"`
	Streak          int  `json:"streak"`
}

// Habit is a user-defined habit. Negative habits are ones the user tries to avoid.
type Habit struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	LastCompleted  time.Time `json:"lastCompleted"`
	IsNegative     bool      `json:"isNegative"`
	NegativeStreak int       `json:"negativeStreak"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CompulsoryHabit is a weather-driven task that lives for a single day
type CompulsoryHabit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Weather   string `json:"weather"`
	XP        int    `json:"xp"`
}

// SleepLog is one self-reported night of sleep
type SleepLog struct {
	Date    time.Time `json:"date"`
	Quality int       `json:"quality"`
	Hours   float64   `json:"hours"`
}

// Profile holds the cosmetic buddy identity chosen at onboarding
type Profile struct {
	BuddyName string `json:"buddyName"`
	BuddyType string `json:"buddyType"`
}

// Survey is the one-time lifestyle questionnaire answered at onboarding
type Survey struct {
	MoveHours                float64 `json:"moveHours"`
	SleepHours               float64 `json:"sleepHours"`
	SedentaryHours           float64 `json:"sedentaryHours"`
	SleepQuality             float64 `json:"sleepQuality"`
	ExerciseFrequency        float64 `json:"exerciseFrequency"`
	FiberGrams               float64 `json:"fiberGrams"`
	WaterIntake              float64 `json:"waterIntake"`
	ProcessedFoodConsumption float64 `json:"processedFoodConsumption"`
	ReadHours                float64 `json:"readHours"`
	StressLevel              float64 `json:"stressLevel"`
	SocialConnection         float64 `json:"socialConnection"`
	ScreenTimeHours          float64 `json:"screenTimeHours"`
}

// NewBuddyState returns the zero-progress state used before onboarding
func NewBuddyState() *BuddyState {
	return &BuddyState{
		Health:                   MaxHealth,
		Level:                    1,
		DecayMultiplier:          1,
		UnlockedCustomizationIDs: []string{},
		Habits:                   []Habit{},
		CompulsoryHabits:         []CompulsoryHabit{},
		SleepLogs:                []SleepLog{},
	}
}

// IsOnboarded reports whether the survey has been submitted
func (s *BuddyState) IsOnboarded() bool {
	return !s.OnboardedAt.IsZero()
}

// HasUnlocked reports whether a customization is in the unlocked set
func (s *BuddyState) HasUnlocked(id string) bool {
	for _, unlocked := range s.UnlockedCustomizationIDs {
		if unlocked == id {
			return true
		}
	}
	return false
}

// Unlock adds id to the unlocked set. Returns false if it was already present.
func (s *BuddyState) Unlock(id string) bool {
	if s.HasUnlocked(id) {
		return false
	}
	s.UnlockedCustomizationIDs = append(s.UnlockedCustomizationIDs, id)
	return true
}

// FindHabit returns the index of the habit with the given id, or -1
func (s *BuddyState) FindHabit(id string) int {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return i
		}
	}
	return -1
}

// HasIncompleteCompulsory reports whether any compulsory habit is still open
func (s *BuddyState) HasIncompleteCompulsory() bool {
	for _, h := range s.CompulsoryHabits {
		if !h.Completed {
			return true
		}
	}
	return false
}

// AppendSleepLog appends a log and evicts the oldest entries beyond MaxSleepLogs
func (s *BuddyState) AppendSleepLog(log SleepLog) {
	s.SleepLogs = append(s.SleepLogs, log)
	if over := len(s.SleepLogs) - MaxSleepLogs; over > 0 {
		s.SleepLogs = append([]SleepLog(nil), s.SleepLogs[over:]...)
	}
}

// ClampHealth keeps health within [0, MaxHealth]
func (s *BuddyState) ClampHealth() {
	s.Health = Clamp(s.Health, 0, MaxHealth)
}

// Clamp bounds every sub-stat to [0, MaxHealth] and recomputes Overall
func (ss *SubStats) Clamp() {
	ss.Hydration = Clamp(ss.Hydration, 0, MaxHealth)
	ss.Activity = Clamp(ss.Activity, 0, MaxHealth)
	ss.Mental = Clamp(ss.Mental, 0, MaxHealth)
	ss.Gut = Clamp(ss.Gut, 0, MaxHealth)
	ss.Recompute()
}

// Recompute sets Overall to the rounded mean of the four sub-stats
func (ss *SubStats) Recompute() {
	ss.Overall = int(math.Round((ss.Hydration + ss.Activity + ss.Mental + ss.Gut) / 4))
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

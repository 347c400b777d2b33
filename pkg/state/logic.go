// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

// Mood is the buddy's displayed disposition
type Mood string

const (
	MoodHappy Mood = "happy"
	MoodTired Mood = "tired"

	// GrumpyHealth is the health below which the buddy turns tired and grumpy
	GrumpyHealth = 50.0
)

// Mood derives the buddy's disposition from its health
func (s *BuddyState) Mood() Mood {
	if s.Health < GrumpyHealth {
		return MoodTired
	}
	return MoodHappy
}

// Clone returns a deep copy of the state. Engine operations work on a clone
// so the caller's value is never mutated.
func (s *BuddyState) Clone() *BuddyState {
	if s == nil {
		return nil
	}

	c := *s

	if s.UnlockedCustomizationIDs != nil {
		c.UnlockedCustomizationIDs = make([]string, len(s.UnlockedCustomizationIDs))
		copy(c.UnlockedCustomizationIDs, s.UnlockedCustomizationIDs)
	}
	if s.ActiveCustomizationID != nil {
		id := *s.ActiveCustomizationID
		c.ActiveCustomizationID = &id
	}
	if s.Habits != nil {
		c.Habits = make([]Habit, len(s.Habits))
		copy(c.Habits, s.Habits)
	}
	if s.CompulsoryHabits != nil {
		c.CompulsoryHabits = make([]CompulsoryHabit, len(s.CompulsoryHabits))
		copy(c.CompulsoryHabits, s.CompulsoryHabits)
	}
	if s.SleepLogs != nil {
		c.SleepLogs = make([]SleepLog, len(s.SleepLogs))
		copy(c.SleepLogs, s.SleepLogs)
	}
	if s.Survey != nil {
		survey := *s.Survey
		c.Survey = &survey
	}

	return &c
}

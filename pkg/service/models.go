// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"sort"
	"time"
)

// Notification is a rendered buddy message shown in the user's inbox.
// Reason is the signal code it was rendered from.
type Notification struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CompletionHistory tracks habit completions per calendar day.
// Uses "YYYY-MM-DD" day keys, e.g. {"2025-05-05": 3, "2025-05-04": 1}.
type CompletionHistory struct {
	ByDay map[string]int `json:"byDay"`
}

// Total returns the number of completions across all tracked days
func (h *CompletionHistory) Total() int {
	total := 0
	for _, n := range h.ByDay {
		total += n
	}
	return total
}

// Since returns the number of completions on or after the day key from
func (h *CompletionHistory) Since(from string) int {
	total := 0
	for day, n := range h.ByDay {
		if day >= from {
			total += n
		}
	}
	return total
}

// Days returns the tracked day keys in ascending order
func (h *CompletionHistory) Days() []string {
	days := make([]string, 0, len(h.ByDay))
	for day := range h.ByDay {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

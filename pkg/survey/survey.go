// Package survey turns the onboarding lifestyle questionnaire into starting sub-stats.
package survey

import (
	"math"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Scores are the 0-100 sub-scores derived from a survey
type Scores struct {
	Hydration int `json:"hydration"`
	Activity  int `json:"activity"`
	Mental    int `json:"mental"`
	Gut       int `json:"gut"`
	Overall   int `json:"overall"`
}

type factor struct {
	value  float64
	weight float64
}

// Score computes the sub-scores for a survey. Each factor is clamped to
// [0, 1] before weighting, so out-of-range answers never fail.
func Score(s state.Survey) Scores {
	hydration := weigh(
		factor{s.WaterIntake / 8, 1},
	)
	activity := weigh(
		factor{s.MoveHours / 1.5, 0.3},
		factor{s.ExerciseFrequency / 7, 0.3},
		factor{1 - s.SedentaryHours/16, 0.1},
		factor{(s.SleepQuality - 1) / 4, 0.15},
		factor{s.SleepHours / 8, 0.15},
	)
	mental := weigh(
		factor{s.ReadHours / 1, 0.25},
		factor{(10 - s.StressLevel) / 9, 0.35},
		factor{(s.SocialConnection - 1) / 4, 0.2},
		factor{1 - s.ScreenTimeHours/6, 0.2},
	)
	gut := weigh(
		factor{s.FiberGrams / 30, 0.6},
		factor{(5 - s.ProcessedFoodConsumption) / 4, 0.4},
	)

	return Scores{
		Hydration: hydration,
		Activity:  activity,
		Mental:    mental,
		Gut:       gut,
		Overall:   int(math.Round(float64(hydration+activity+mental+gut) / 4)),
	}
}

// SubStats converts scores into the state's sub-stat block
func (sc Scores) SubStats() state.SubStats {
	ss := state.SubStats{
		Hydration: float64(sc.Hydration),
		Activity:  float64(sc.Activity),
		Mental:    float64(sc.Mental),
		Gut:       float64(sc.Gut),
	}
	ss.Recompute()
	return ss
}

func weigh(factors ...factor) int {
	var sum float64
	for _, f := range factors {
		v := f.value
		if math.IsNaN(v) {
			v = 0
		}
		sum += state.Clamp(v, 0, 1) * f.weight
	}
	return int(math.Round(state.Clamp(sum, 0, 1) * 100))
}

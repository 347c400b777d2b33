package engine

import (
	"time"
)

// WeatherSource supplies the weather condition used to generate a day's
// compulsory habits
type WeatherSource interface {
	Condition(now time.Time) string
}

// StaticWeather always reports the same condition
type StaticWeather string

// Condition implements WeatherSource
func (w StaticWeather) Condition(time.Time) string {
	return string(w)
}

// RotatingWeather simulates weather by cycling through conditions by day of year
type RotatingWeather []string

// Condition implements WeatherSource
func (w RotatingWeather) Condition(now time.Time) string {
	if len(w) == 0 {
		return ""
	}
	return w[now.YearDay()%len(w)]
}

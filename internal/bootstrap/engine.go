// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"
	"strings"

	"github.com/AccelByte/extend-buddy-progression/internal/config"
	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/sirupsen/logrus"
)

// InitEngine creates the buddy engine for the configured timezone and weather.
//
// ============================================================
// DEVELOPER: Plug in a real weather source here
// ============================================================
// Compulsory habits are generated once per day from the weather
// condition. WEATHER_CONDITION accepts:
// - a single condition ("cold", "rainy", "hot", "mild")
// - a comma-separated list, rotated by day of year
//
// To use a live forecast, implement engine.WeatherSource and
// pass it with engine.WithWeather below.
// ============================================================
func InitEngine(cfg *config.Config) (*engine.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	eng := engine.New(
		engine.WithLocation(loc),
		engine.WithWeather(weatherSource(cfg.WeatherCondition)),
	)

	logrus.Infof("initialized engine (timezone: %s, weather: %s)", loc, cfg.WeatherCondition)
	return eng, nil
}

func weatherSource(condition string) engine.WeatherSource {
	if !strings.Contains(condition, ",") {
		return engine.StaticWeather(strings.TrimSpace(condition))
	}

	var rotation engine.RotatingWeather
	for _, c := range strings.Split(condition, ",") {
		if c = strings.TrimSpace(c); c != "" {
			rotation = append(rotation, c)
		}
	}
	return rotation
}

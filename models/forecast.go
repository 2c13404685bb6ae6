package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format of ForecastEntry.Date
const DateLayout = "2006-01-02"

// Temperature bounds for generated forecasts, in Celsius (max is exclusive)
const (
	MinTemperatureC = -20
	MaxTemperatureC = 55
)

// Summaries is the fixed set of labels a forecast entry may carry
var Summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// IsKnownSummary reports whether s is one of Summaries
func IsKnownSummary(s string) bool {
	for _, known := range Summaries {
		if s == known {
			return true
		}
	}
	return false
}

// ForecastEntry is one day of a generated forecast.
// Fahrenheit is never stored; it is derived from TemperatureC on demand.
type ForecastEntry struct {
	Date         time.Time // calendar date, UTC midnight
	TemperatureC int       // in Celsius
	Summary      string    // one of Summaries
}

// FahrenheitFromCelsius converts using the sample's 0.5556 factor, rounded to the nearest degree
func FahrenheitFromCelsius(c int) int {
	return int(math.Round(32 + float64(c)/0.5556))
}

// TemperatureF returns the derived Fahrenheit temperature
func (e ForecastEntry) TemperatureF() int {
	return FahrenheitFromCelsius(e.TemperatureC)
}

type forecastEntryJSON struct {
	Date         string `json:"date"`
	TemperatureC int    `json:"temperatureC"`
	TemperatureF int    `json:"temperatureF"`
	Summary      string `json:"summary"`
}

// MarshalJSON writes the entry with its derived temperatureF
func (e ForecastEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(forecastEntryJSON{
		Date:         e.Date.Format(DateLayout),
		TemperatureC: e.TemperatureC,
		TemperatureF: e.TemperatureF(),
		Summary:      e.Summary,
	})
}

// UnmarshalJSON accepts a plain date or a full RFC 3339 timestamp.
// temperatureF is checked against temperatureC but never kept.
func (e *ForecastEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date         string `json:"date"`
		TemperatureC *int   `json:"temperatureC"`
		TemperatureF *int   `json:"temperatureF"`
		Summary      string `json:"summary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.TemperatureC == nil {
		return fmt.Errorf("missing temperatureC")
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return err
	}
	if raw.TemperatureF != nil && *raw.TemperatureF != FahrenheitFromCelsius(*raw.TemperatureC) {
		return fmt.Errorf("temperatureF %d does not match temperatureC %d", *raw.TemperatureF, *raw.TemperatureC)
	}

	*e = ForecastEntry{
		Date:         date,
		TemperatureC: *raw.TemperatureC,
		Summary:      raw.Summary,
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

package domain

import (
	"fmt"
	"math"
	"strings"
)

// SeverityLevel is the four-level drought risk scale, ordered by increasing risk.
type SeverityLevel int

const (
	SeverityNormal SeverityLevel = iota
	SeverityAlert
	SeverityAlarm
	SeverityEmergency
)

// String returns the display name used on the wire (drought_level field).
func (l SeverityLevel) String() string {
	switch l {
	case SeverityNormal:
		return "Normal"
	case SeverityAlert:
		return "Alert"
	case SeverityAlarm:
		return "Alarm"
	case SeverityEmergency:
		return "Emergency"
	default:
		return fmt.Sprintf("SeverityLevel(%d)", int(l))
	}
}

// ColorCode returns the fixed display color for the level.
func (l SeverityLevel) ColorCode() string {
	switch l {
	case SeverityNormal:
		return "#00FF00" // green
	case SeverityAlert:
		return "#FFFF00" // yellow
	case SeverityAlarm:
		return "#FFA500" // orange
	case SeverityEmergency:
		return "#FF0000" // red
	default:
		return ""
	}
}

// ParseSeverityLevel converts a level name (case-insensitive) back to a
// SeverityLevel. Used for the ALERT_MIN_LEVEL configuration knob.
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return SeverityNormal, nil
	case "alert":
		return SeverityAlert, nil
	case "alarm":
		return SeverityAlarm, nil
	case "emergency":
		return SeverityEmergency, nil
	default:
		return SeverityNormal, fmt.Errorf("unknown severity level %q", s)
	}
}

// severityBand maps a half-open change-rate interval [Lower, Upper) to a level.
type severityBand struct {
	Lower float64
	Upper float64
	Level SeverityLevel
}

// severityBands is the classification table, ordered from most to least severe.
// The bands are contiguous and partition the real line: every finite change
// rate falls in exactly one band. Breakpoints are percent change between the
// last historical NDVI value and the final forecast mean: declines steeper
// than 35% are Emergency, 20% Alarm, 5% Alert; anything milder is Normal.
var severityBands = []severityBand{
	{Lower: math.Inf(-1), Upper: -35, Level: SeverityEmergency},
	{Lower: -35, Upper: -20, Level: SeverityAlarm},
	{Lower: -20, Upper: -5, Level: SeverityAlert},
	{Lower: -5, Upper: math.Inf(1), Level: SeverityNormal},
}

// ClassifyChangeRate maps a finite change rate to its severity level.
// Total and deterministic: exactly one band matches any finite input.
func ClassifyChangeRate(rate float64) SeverityLevel {
	for _, band := range severityBands {
		if rate >= band.Lower && rate < band.Upper {
			return band.Level
		}
	}
	// Unreachable for finite input; +Inf lands here because the last band is
	// half-open. Treat it as the mildest level rather than inventing a fifth.
	return SeverityNormal
}

// ChangeRate computes the signed percent change between the last historical
// NDVI value and the final forecast mean. A zero baseline makes the division
// undefined and fails with ErrDegenerateInput instead of returning infinity.
func ChangeRate(lastHistorical, forecastEndMean float64) (float64, error) {
	if lastHistorical == 0 {
		return 0, fmt.Errorf("%w: last historical NDVI is zero", ErrDegenerateInput)
	}
	rate := (forecastEndMean - lastHistorical) / lastHistorical * 100
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: change rate is not finite", ErrDegenerateInput)
	}
	return rate, nil
}

// Classify derives the severity level and change rate for a forecast
// trajectory relative to the last historical value. The change rate is
// computed exactly once here; callers must thread the returned value through
// insight generation rather than recomputing it.
func Classify(lastHistorical float64, forecast Forecast) (SeverityLevel, float64, error) {
	if len(forecast) == 0 {
		return SeverityNormal, 0, fmt.Errorf("%w: empty forecast", ErrDegenerateInput)
	}
	rate, err := ChangeRate(lastHistorical, forecast.Last().Mean)
	if err != nil {
		return SeverityNormal, 0, err
	}
	return ClassifyChangeRate(rate), rate, nil
}

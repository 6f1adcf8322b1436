package domain

import "fmt"

// Insight templates are data, not control flow: the trend line and the action
// list per level live in tables so wording changes never touch logic. All
// output is deterministic for fixed inputs.
//
// The first insight always states the trend direction and signed magnitude
// over the requested horizon; the remaining entries are level-specific
// recommended actions. Wording targets pastoralist readers: plain language,
// concrete guidance, no index jargon beyond "greenness".

// trendTemplates are fmt format strings taking (change_rate float64, horizon_weeks int).
var trendTemplates = map[SeverityLevel]string{
	SeverityNormal:    "Vegetation is stable with a change of %.1f%% expected over the next %d weeks.",
	SeverityAlert:     "Vegetation shows early signs of decline (%.1f%% change over the next %d weeks).",
	SeverityAlarm:     "Significant greenness decline expected (%.1f%% over the next %d weeks).",
	SeverityEmergency: "Severe drought conditions predicted: %.1f%% vegetation decline within %d weeks.",
}

// trendImproving replaces the Normal trend line when conditions are improving.
var trendImproving = "Greenness is expected to improve by %.1f%% over the next %d weeks."

// actionTemplates are appended after the trend line, in order.
var actionTemplates = map[SeverityLevel][]string{
	SeverityNormal: {
		"Pasture quality is good for grazing. Continue normal grazing patterns; no immediate action needed.",
	},
	SeverityAlert: {
		"Monitor conditions closely over the coming weeks.",
		"Begin planning for possible water and grazing adjustments.",
	},
	SeverityAlarm: {
		"Consider early migration planning.",
		"Identify alternative grazing areas and water sources now.",
	},
	SeverityEmergency: {
		"Move livestock to better grazing areas and secure emergency water supplies.",
		"Consider destocking if conditions do not improve.",
	},
}

// GenerateInsights renders 1-3 guidance strings for a classified assessment.
// The change rate must be the value produced by Classify for the same
// forecast; this function never recomputes it.
func GenerateInsights(level SeverityLevel, changeRate float64, horizonWeeks int) []string {
	trend := trendTemplates[level]
	if level == SeverityNormal && changeRate > 0 {
		trend = trendImproving
	}

	insights := []string{fmt.Sprintf(trend, changeRate, horizonWeeks)}
	insights = append(insights, actionTemplates[level]...)
	return insights
}

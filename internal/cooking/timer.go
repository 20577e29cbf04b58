package cooking

import (
	"regexp"
	"strconv"
)

// Matches "8 minutes", "5-10 min", "5 to 10 minutes" in step text
var durationPattern = regexp.MustCompile(`(?i)(\d+)(?:\s*(?:-|–|to)\s*(\d+))?\s*(?:minutes?|mins?|min)\b`)

// Minute values offered when the user starts a timer by hand
var ManualPresets = []int{1, 5, 10, 15, 30}

// DetectDurations scans step text for a cook-time phrase and returns the
// minute values it names: one element for a fixed duration, two for a range
// ("5 to 10 minutes"), nil when nothing matches.
func DetectDurations(stepText string) []int {
	m := durationPattern.FindStringSubmatch(stepText)
	if m == nil {
		return nil
	}

	low, err := strconv.Atoi(m[1])
	if err != nil || low <= 0 {
		return nil
	}

	if m[2] == "" {
		return []int{low}
	}

	high, err := strconv.Atoi(m[2])
	if err != nil || high <= low {
		return []int{low}
	}

	return []int{low, high}
}

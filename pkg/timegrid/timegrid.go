package timegrid

import "fmt"

const (
	minutesPerStep = 15
	stepsPerDay    = 24 * 60 / minutesPerStep
)

// GenerateTimeOptions returns the selectable time-of-day values used to
// populate event start/end pickers: 96 zero-padded "HH:MM" strings from
// "00:00" through "23:45" in 15-minute steps. Deterministic and side-effect
// free, so callers may regenerate it freely.
func GenerateTimeOptions() []string {
	options := make([]string, 0, stepsPerDay)
	for step := 0; step < stepsPerDay; step++ {
		minutes := step * minutesPerStep
		options = append(options, fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
	}
	return options
}

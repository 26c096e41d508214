package scoring

import "fmt"

// Level is the categorical risk band attached to a score.
type Level string

// Risk bands, lowest first.
const (
	LevelLow      Level = "Low"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// Cardiac band ceilings (exclusive).
const (
	cardiacLowCeiling      = 20
	cardiacModerateCeiling = 40
	cardiacHighCeiling     = 60
)

// Fatigue band floors (exclusive).
const (
	fatigueCriticalFloor = 70
	fatigueHighFloor     = 50
	fatigueModerateFloor = 30
)

// ParseLevel converts a band name back into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelLow, LevelModerate, LevelHigh, LevelCritical:
		return Level(s), nil
	default:
		return "", fmt.Errorf("%w: unknown risk level %q", ErrInvalidInput, s)
	}
}

// String returns the band name.
func (l Level) String() string { return string(l) }

// Rank orders levels from 0 (Low) to 3 (Critical); unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelModerate:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	default:
		return -1
	}
}

// CardiacLevel bands a clamped cardiac score.
func CardiacLevel(score int) Level {
	switch {
	case score < cardiacLowCeiling:
		return LevelLow
	case score < cardiacModerateCeiling:
		return LevelModerate
	case score < cardiacHighCeiling:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// FatigueLevel bands a clamped fatigue score, highest threshold first.
func FatigueLevel(score float64) Level {
	switch {
	case score > fatigueCriticalFloor:
		return LevelCritical
	case score > fatigueHighFloor:
		return LevelHigh
	case score > fatigueModerateFloor:
		return LevelModerate
	default:
		return LevelLow
	}
}

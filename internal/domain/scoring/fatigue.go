package scoring

import (
	"math"
	"strings"
)

// Fatigue model constants.
const (
	baselineSleepHours   = 8.0
	acuteExponent        = 1.5
	acuteMultiplier      = 5.0
	acuteReportThreshold = 2.0
	chronicThreshold     = 1.0
	chronicMultiplier    = 10.0
	prolongedAwakeHours  = 16.0
	criticalAwakeHours   = 20.0
	pointsProlongedAwake = 20.0
	pointsCriticalAwake  = 40.0
	circadianLowStart    = 2
	circadianLowEnd      = 5
	postLunchStart       = 13
	postLunchEnd         = 15
	pointsCircadianLow   = 25.0
	pointsPostLunchDip   = 10.0
	fitToWorkMaxScore    = 60.0
	lastHourOfDay        = 23
	maxFatigueScore      = float64(maxScore)
)

// Known shift types. ShiftType is informational and never affects the score.
const (
	ShiftDay      = "day"
	ShiftNight    = "night"
	ShiftRotating = "rotating"
)

// FatigueInput is a sleep/wake snapshot at a given local hour.
type FatigueInput struct {
	LastSleepDurationHours float64 `json:"last_sleep_duration_hours"`
	AvgSleep7Days          float64 `json:"avg_sleep_7days"`
	HoursAwake             float64 `json:"hours_awake"`
	CurrentHour            int     `json:"current_hour"`
	ShiftType              string  `json:"shift_type,omitempty"`
}

// Validate rejects non-finite or negative durations and out-of-range hours.
func (in FatigueInput) Validate() error {
	var verr ValidationError
	checkMeasurement(&verr, "last_sleep_duration_hours", in.LastSleepDurationHours)
	checkMeasurement(&verr, "avg_sleep_7days", in.AvgSleep7Days)
	checkMeasurement(&verr, "hours_awake", in.HoursAwake)
	if in.CurrentHour < 0 || in.CurrentHour > lastHourOfDay {
		verr.Add("current_hour", "must be between 0 and 23")
	}
	return verr.Err()
}

// KnownShift reports whether the shift type is one of day, night or rotating.
func (in FatigueInput) KnownShift() bool {
	switch strings.ToLower(strings.TrimSpace(in.ShiftType)) {
	case ShiftDay, ShiftNight, ShiftRotating:
		return true
	default:
		return false
	}
}

// FatigueResult is the outcome of a fatigue assessment.
type FatigueResult struct {
	FatigueScore float64  `json:"fatigue_score"`
	FitToWork    bool     `json:"fit_to_work"`
	RiskLevel    Level    `json:"risk_level"`
	Contributors []string `json:"contributors"`
}

// FatigueScorer scores sleep history. The zero value is ready to use.
type FatigueScorer struct{}

// NewFatigueScorer returns a fatigue scorer.
func NewFatigueScorer() *FatigueScorer {
	return &FatigueScorer{}
}

// Score accumulates acute sleep loss, chronic sleep debt, time awake and
// circadian phase. The total is capped at 100 and rounded to one decimal;
// fitness and banding are derived from that rounded value.
//
// Both wakefulness terms fire once hours awake exceed 20, so a 22 hour
// shift collects 60 points from wakefulness alone.
func (FatigueScorer) Score(in FatigueInput) FatigueResult {
	score := 0.0
	contributors := make([]string, 0, 5)

	if deficit := baselineSleepHours - in.LastSleepDurationHours; deficit > 0 {
		score += math.Pow(deficit, acuteExponent) * acuteMultiplier
		if deficit > acuteReportThreshold {
			contributors = append(contributors, "Acute Sleep Loss ("+formatFixed1(deficit)+" hrs deficit)")
		}
	}

	if avgDeficit := baselineSleepHours - in.AvgSleep7Days; avgDeficit > chronicThreshold {
		score += avgDeficit * chronicMultiplier
		contributors = append(contributors, "Chronic Sleep Debt (Avg "+formatFloat(in.AvgSleep7Days)+" hrs/night)")
	}

	if in.HoursAwake > prolongedAwakeHours {
		score += pointsProlongedAwake
		contributors = append(contributors, "Prolonged Wakefulness ("+formatFloat(in.HoursAwake)+" hrs)")
	}
	if in.HoursAwake > criticalAwakeHours {
		score += pointsCriticalAwake
		contributors = append(contributors, "Critical Wakefulness (>20 hrs) - High Accident Risk")
	}

	switch {
	case in.CurrentHour >= circadianLowStart && in.CurrentHour <= circadianLowEnd:
		score += pointsCircadianLow
		contributors = append(contributors, "Circadian Low (Biological Night)")
	case in.CurrentHour >= postLunchStart && in.CurrentHour <= postLunchEnd:
		score += pointsPostLunchDip
		contributors = append(contributors, "Post-Lunch Dip")
	}

	score = round1(min(score, maxFatigueScore))

	return FatigueResult{
		FatigueScore: score,
		FitToWork:    score <= fitToWorkMaxScore,
		RiskLevel:    FatigueLevel(score),
		Contributors: contributors,
	}
}

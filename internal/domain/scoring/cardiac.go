package scoring

import "math"

// Cardiac rule thresholds and points.
const (
	sdnnCritical      = 50.0
	sdnnReduced       = 100.0
	rmssdLow          = 20.0
	rhrTachycardia    = 90.0
	rhrElevated       = 80.0
	systolicStage2    = 140.0
	diastolicStage2   = 90.0
	systolicStage1    = 130.0
	diastolicStage1   = 80.0
	bmiObese          = 30.0
	pointsSDNNLow     = 30
	pointsSDNNReduced = 15
	pointsRMSSDLow    = 20
	pointsTachycardia = 25
	pointsElevatedRHR = 15
	pointsHTNStage2   = 20
	pointsHTNStage1   = 10
	pointsObesity     = 10
)

// CardiacClinicalNote is attached to every cardiac result.
const CardiacClinicalNote = "Risk score calculated based on HRV (SDNN/RMSSD), RHR, and BP guidelines."

// CardiacInput is a vital-signs snapshot.
type CardiacInput struct {
	Age         int     `json:"age"`
	RestingHR   float64 `json:"resting_hr"`
	HRVSDNN     float64 `json:"hrv_sdnn"`
	HRVRMSSD    float64 `json:"hrv_rmssd"`
	SystolicBP  float64 `json:"systolic_bp"`
	DiastolicBP float64 `json:"diastolic_bp"`
	BMI         float64 `json:"bmi"`
}

// Validate rejects non-finite or negative measurements.
func (in CardiacInput) Validate() error {
	var verr ValidationError
	if in.Age < 0 {
		verr.Add("age", "must be non-negative")
	}
	checkMeasurement(&verr, "resting_hr", in.RestingHR)
	checkMeasurement(&verr, "hrv_sdnn", in.HRVSDNN)
	checkMeasurement(&verr, "hrv_rmssd", in.HRVRMSSD)
	checkMeasurement(&verr, "systolic_bp", in.SystolicBP)
	checkMeasurement(&verr, "diastolic_bp", in.DiastolicBP)
	checkMeasurement(&verr, "bmi", in.BMI)
	return verr.Err()
}

// CardiacResult is the outcome of a cardiac assessment.
type CardiacResult struct {
	RiskScore    int      `json:"risk_score"`
	RiskLevel    Level    `json:"risk_level"`
	RiskFactors  []string `json:"risk_factors"`
	ClinicalNote string   `json:"clinical_note"`
}

// CardiacScorer scores vital signs. The zero value is ready to use.
type CardiacScorer struct{}

// NewCardiacScorer returns a cardiac scorer.
func NewCardiacScorer() *CardiacScorer {
	return &CardiacScorer{}
}

// Score evaluates the cardiac rules in fixed order. Paired thresholds
// (HRV SDNN, resting HR, blood pressure) only award their highest matching
// bucket. The total is capped at 100.
func (CardiacScorer) Score(in CardiacInput) CardiacResult {
	score := 0
	factors := make([]string, 0, 5)

	switch {
	case in.HRVSDNN < sdnnCritical:
		score += pointsSDNNLow
		factors = append(factors, "Critically Low HRV (SDNN < 50ms) - High Autonomic Stress")
	case in.HRVSDNN < sdnnReduced:
		score += pointsSDNNReduced
		factors = append(factors, "Reduced HRV (SDNN < 100ms) - Moderate Stress")
	}

	if in.HRVRMSSD < rmssdLow {
		score += pointsRMSSDLow
		factors = append(factors, "Low Vagal Tone (RMSSD < 20ms) - Poor Recovery")
	}

	switch {
	case in.RestingHR > rhrTachycardia:
		score += pointsTachycardia
		factors = append(factors, "Tachycardia (RHR "+formatFloat(in.RestingHR)+" bpm)")
	case in.RestingHR > rhrElevated:
		score += pointsElevatedRHR
		factors = append(factors, "Elevated Resting HR ("+formatFloat(in.RestingHR)+" bpm)")
	}

	bp := formatFloat(in.SystolicBP) + "/" + formatFloat(in.DiastolicBP)
	switch {
	case in.SystolicBP > systolicStage2 || in.DiastolicBP > diastolicStage2:
		score += pointsHTNStage2
		factors = append(factors, "Hypertension Stage 2 ("+bp+")")
	case in.SystolicBP > systolicStage1 || in.DiastolicBP > diastolicStage1:
		score += pointsHTNStage1
		factors = append(factors, "Hypertension Stage 1 ("+bp+")")
	}

	if in.BMI > bmiObese {
		score += pointsObesity
		factors = append(factors, "Obesity (BMI "+formatFloat(in.BMI)+")")
	}

	score = min(score, maxScore)

	return CardiacResult{
		RiskScore:    score,
		RiskLevel:    CardiacLevel(score),
		RiskFactors:  factors,
		ClinicalNote: CardiacClinicalNote,
	}
}

// checkMeasurement rejects NaN, infinities and negative values.
func checkMeasurement(verr *ValidationError, field string, v float64) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		verr.Add(field, "must be a finite number")
	case v < 0:
		verr.Add(field, "must be non-negative")
	}
}

package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

// RiskDependencies defines the scoring operations used by RiskHandler.
type RiskDependencies interface {
	AssessCardiac(ctx context.Context, meta model.Meta, in scoring.CardiacInput) (scoring.CardiacResult, model.Receipt, error)
	AssessFatigue(ctx context.Context, meta model.Meta, in scoring.FatigueInput) (scoring.FatigueResult, model.Receipt, error)
	Rejected(kind scoring.Kind)
}

// RiskHandler handles the scoring endpoints.
type RiskHandler struct {
	deps RiskDependencies
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(deps RiskDependencies) *RiskHandler {
	return &RiskHandler{deps: deps}
}

// cardiacRequest uses pointers so a missing field (or JSON null) can be
// told apart from zero.
type cardiacRequest struct {
	Age         *float64 `json:"age"`
	RestingHR   *float64 `json:"resting_hr"`
	HRVSDNN     *float64 `json:"hrv_sdnn"`
	HRVRMSSD    *float64 `json:"hrv_rmssd"`
	SystolicBP  *float64 `json:"systolic_bp"`
	DiastolicBP *float64 `json:"diastolic_bp"`
	BMI         *float64 `json:"bmi"`
	SubjectID   string   `json:"subject_id"`
}

func (req *cardiacRequest) input() (scoring.CardiacInput, error) {
	var verr scoring.ValidationError
	in := scoring.CardiacInput{
		Age:         requireInt(&verr, "age", req.Age),
		RestingHR:   require(&verr, "resting_hr", req.RestingHR),
		HRVSDNN:     require(&verr, "hrv_sdnn", req.HRVSDNN),
		HRVRMSSD:    require(&verr, "hrv_rmssd", req.HRVRMSSD),
		SystolicBP:  require(&verr, "systolic_bp", req.SystolicBP),
		DiastolicBP: require(&verr, "diastolic_bp", req.DiastolicBP),
		BMI:         require(&verr, "bmi", req.BMI),
	}
	return in, mergeRangeErrors(&verr, in.Validate())
}

type fatigueRequest struct {
	LastSleepDurationHours *float64 `json:"last_sleep_duration_hours"`
	AvgSleep7Days          *float64 `json:"avg_sleep_7days"`
	HoursAwake             *float64 `json:"hours_awake"`
	CurrentHour            *float64 `json:"current_hour"`
	ShiftType              *string  `json:"shift_type"`
	SubjectID              string   `json:"subject_id"`
}

func (req *fatigueRequest) input() (scoring.FatigueInput, error) {
	var verr scoring.ValidationError
	in := scoring.FatigueInput{
		LastSleepDurationHours: require(&verr, "last_sleep_duration_hours", req.LastSleepDurationHours),
		AvgSleep7Days:          require(&verr, "avg_sleep_7days", req.AvgSleep7Days),
		HoursAwake:             require(&verr, "hours_awake", req.HoursAwake),
		CurrentHour:            requireInt(&verr, "current_hour", req.CurrentHour),
	}
	if req.ShiftType != nil {
		in.ShiftType = *req.ShiftType
	}
	return in, mergeRangeErrors(&verr, in.Validate())
}

func require(verr *scoring.ValidationError, field string, v *float64) float64 {
	if v == nil {
		verr.Add(field, "field required")
		return 0
	}
	return *v
}

func requireInt(verr *scoring.ValidationError, field string, v *float64) int {
	if v == nil {
		verr.Add(field, "field required")
		return 0
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		verr.Add(field, "must be an integer")
		return 0
	}
	return int(*v)
}

// mergeRangeErrors folds range failures into verr, skipping fields that
// were already reported as missing or malformed.
func mergeRangeErrors(verr *scoring.ValidationError, rangeErr error) error {
	if len(verr.Fields) == 0 {
		return nil // let the service validate and count it
	}
	var rerr *scoring.ValidationError
	if errors.As(rangeErr, &rerr) {
		reported := make(map[string]bool, len(verr.Fields))
		for _, f := range verr.Fields {
			reported[f.Field] = true
		}
		for _, f := range rerr.Fields {
			if !reported[f.Field] {
				verr.Add(f.Field, f.Reason)
			}
		}
	}
	return verr.Err()
}

func requestMeta(r *http.Request, subjectID string) model.Meta {
	return model.Meta{
		SubjectID:      strings.TrimSpace(subjectID),
		IdempotencyKey: strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey)),
	}
}

func setReceipt(w http.ResponseWriter, rc model.Receipt) {
	if rc.Recorded {
		w.Header().Set(HeaderAssessmentID, rc.ID.String())
	}
}

// HandleCardiac handles POST /risk/cardiac requests.
func (h *RiskHandler) HandleCardiac(w http.ResponseWriter, r *http.Request) {
	const op = "api.risk_cardiac"

	var req cardiacRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.deps.Rejected(scoring.KindCardiac)
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.input()
	if err != nil {
		h.deps.Rejected(scoring.KindCardiac)
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", WrapKind(op, ErrInvalidInput, err))
		return
	}

	res, receipt, err := h.deps.AssessCardiac(r.Context(), requestMeta(r, req.SubjectID), in)
	if err != nil {
		writeAssessError(w, op, err)
		return
	}
	setReceipt(w, receipt)
	writeJSON(w, http.StatusOK, res)
}

// HandleFatigue handles POST /risk/fatigue requests.
func (h *RiskHandler) HandleFatigue(w http.ResponseWriter, r *http.Request) {
	const op = "api.risk_fatigue"

	var req fatigueRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.deps.Rejected(scoring.KindFatigue)
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.input()
	if err != nil {
		h.deps.Rejected(scoring.KindFatigue)
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", WrapKind(op, ErrInvalidInput, err))
		return
	}

	res, receipt, err := h.deps.AssessFatigue(r.Context(), requestMeta(r, req.SubjectID), in)
	if err != nil {
		writeAssessError(w, op, err)
		return
	}
	setReceipt(w, receipt)
	writeJSON(w, http.StatusOK, res)
}

func writeAssessError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, scoring.ErrInvalidInput) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_input", WrapKind(op, ErrInvalidInput, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
}

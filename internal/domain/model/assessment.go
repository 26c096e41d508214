// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

// Meta carries request context that is not part of the scoring input.
type Meta struct {
	SubjectID      string // optional caller-supplied subject reference
	IdempotencyKey string // optional; repeated keys are recorded once
}

// Receipt reports what happened to the history record of an assessment.
// Scoring itself never depends on it.
type Receipt struct {
	ID        uuid.UUID // set when the record was queued
	Recorded  bool
	Duplicate bool // idempotency key seen before
}

// Assessment is one scored request as kept in history.
// Score holds the cardiac integer score or the fatigue score, both on 0..100.
type Assessment struct {
	ID         uuid.UUID       `json:"id"`
	Kind       scoring.Kind    `json:"kind"`
	SubjectID  string          `json:"subject_id,omitempty"`
	Score      float64         `json:"score"`
	RiskLevel  scoring.Level   `json:"risk_level"`
	Factors    []string        `json:"factors"`
	FitToWork  *bool           `json:"fit_to_work,omitempty"` // fatigue only
	Input      json.RawMessage `json:"input"`
	AssessedAt time.Time       `json:"assessed_at"`
}

// NewCardiacAssessment builds a history record for a cardiac result.
func NewCardiacAssessment(meta Meta, in scoring.CardiacInput, res scoring.CardiacResult, at time.Time) (Assessment, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return Assessment{}, fmt.Errorf("encode cardiac input: %w", err)
	}
	return Assessment{
		ID:         uuid.New(),
		Kind:       scoring.KindCardiac,
		SubjectID:  meta.SubjectID,
		Score:      float64(res.RiskScore),
		RiskLevel:  res.RiskLevel,
		Factors:    res.RiskFactors,
		Input:      raw,
		AssessedAt: at.UTC(),
	}, nil
}

// NewFatigueAssessment builds a history record for a fatigue result.
func NewFatigueAssessment(meta Meta, in scoring.FatigueInput, res scoring.FatigueResult, at time.Time) (Assessment, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return Assessment{}, fmt.Errorf("encode fatigue input: %w", err)
	}
	fit := res.FitToWork
	return Assessment{
		ID:         uuid.New(),
		Kind:       scoring.KindFatigue,
		SubjectID:  meta.SubjectID,
		Score:      res.FatigueScore,
		RiskLevel:  res.RiskLevel,
		Factors:    res.Contributors,
		FitToWork:  &fit,
		Input:      raw,
		AssessedAt: at.UTC(),
	}, nil
}

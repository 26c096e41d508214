// Package scoring computes deterministic health-risk scores from
// physiological inputs.
//
// Two independent scorers live here: CardiacScorer maps a vital-signs
// snapshot to a cardiac risk assessment and FatigueScorer maps sleep history
// plus the local clock hour to a fitness-for-work assessment. Both are pure
// and safe to share across goroutines.
package scoring

// Kind names which scorer produced an assessment.
type Kind string

// Supported assessment kinds.
const (
	KindCardiac Kind = "cardiac"
	KindFatigue Kind = "fatigue"
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindCardiac || k == KindFatigue
}

// maxScore is the ceiling shared by both scores.
const maxScore = 100

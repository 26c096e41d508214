package seed

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

// Subject is one synthetic person with both assessment inputs.
type Subject struct {
	ID      string
	Profile string
	Cardiac scoring.CardiacInput
	Fatigue scoring.FatigueInput
}

// Generator draws subjects from weighted profiles. It is not safe for
// concurrent use; the same seed yields the same subjects.
type Generator struct {
	rng      *rand.Rand
	profiles []Profile
	total    float64
}

// NewGenerator creates a generator over profiles (DefaultProfiles when empty).
func NewGenerator(seed int64, profiles []Profile) *Generator {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	g := &Generator{
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // synthetic data
		profiles: profiles,
	}
	for i := range profiles {
		g.total += profiles[i].Weight
	}
	return g
}

// Generate returns n subjects.
func (g *Generator) Generate(n int) []Subject {
	out := make([]Subject, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.next())
	}
	return out
}

func (g *Generator) next() Subject {
	p := g.pick()

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}

	c, f := p.Cardiac, p.Fatigue
	s := Subject{
		ID:      id.String(),
		Profile: p.Name,
		Cardiac: scoring.CardiacInput{
			Age:         int(g.draw(c.Age, 0)),
			RestingHR:   g.draw(c.RestingHR, 0),
			HRVSDNN:     g.draw(c.HRVSDNN, 1),
			HRVRMSSD:    g.draw(c.HRVRMSSD, 1),
			SystolicBP:  g.draw(c.SystolicBP, 0),
			DiastolicBP: g.draw(c.DiastolicBP, 0),
			BMI:         g.draw(c.BMI, 1),
		},
		Fatigue: scoring.FatigueInput{
			LastSleepDurationHours: g.draw(f.LastSleep, 1),
			AvgSleep7Days:          g.draw(f.AvgSleep, 1),
			HoursAwake:             g.draw(f.HoursAwake, 1),
			CurrentHour:            int(g.draw(f.CurrentHour, 0)),
		},
	}
	if len(f.ShiftTypes) > 0 {
		s.Fatigue.ShiftType = f.ShiftTypes[g.rng.Intn(len(f.ShiftTypes))]
	}
	return s
}

func (g *Generator) pick() *Profile {
	x := g.rng.Float64() * g.total
	for i := range g.profiles {
		x -= g.profiles[i].Weight
		if x < 0 {
			return &g.profiles[i]
		}
	}
	return &g.profiles[len(g.profiles)-1]
}

// draw returns a value in r rounded to the given number of decimals.
func (g *Generator) draw(r Range, decimals int) float64 {
	v := r.Min + g.rng.Float64()*(r.Max-r.Min)
	scale := math.Pow(10, float64(decimals))
	v = math.Round(v*scale) / scale
	return math.Min(math.Max(v, r.Min), r.Max)
}

package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive interval values are drawn from uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// CardiacRanges bounds each generated cardiac field.
type CardiacRanges struct {
	Age         Range `yaml:"age"`
	RestingHR   Range `yaml:"resting_hr"`
	HRVSDNN     Range `yaml:"hrv_sdnn"`
	HRVRMSSD    Range `yaml:"hrv_rmssd"`
	SystolicBP  Range `yaml:"systolic_bp"`
	DiastolicBP Range `yaml:"diastolic_bp"`
	BMI         Range `yaml:"bmi"`
}

// FatigueRanges bounds each generated fatigue field.
type FatigueRanges struct {
	LastSleep   Range    `yaml:"last_sleep_duration_hours"`
	AvgSleep    Range    `yaml:"avg_sleep_7days"`
	HoursAwake  Range    `yaml:"hours_awake"`
	CurrentHour Range    `yaml:"current_hour"`
	ShiftTypes  []string `yaml:"shift_types"`
}

// Profile describes one population of synthetic subjects.
type Profile struct {
	Name    string        `yaml:"name"`
	Weight  float64       `yaml:"weight"`
	Cardiac CardiacRanges `yaml:"cardiac"`
	Fatigue FatigueRanges `yaml:"fatigue"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultProfiles returns the built-in healthy, strained and critical populations.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:   "healthy",
			Weight: 6,
			Cardiac: CardiacRanges{
				Age: Range{22, 45}, RestingHR: Range{55, 75},
				HRVSDNN: Range{45, 90}, HRVRMSSD: Range{30, 70},
				SystolicBP: Range{105, 125}, DiastolicBP: Range{65, 80}, BMI: Range{19, 25},
			},
			Fatigue: FatigueRanges{
				LastSleep: Range{7, 9}, AvgSleep: Range{7, 8.5},
				HoursAwake: Range{1, 12}, CurrentHour: Range{8, 18},
				ShiftTypes: []string{"day"},
			},
		},
		{
			Name:   "strained",
			Weight: 3,
			Cardiac: CardiacRanges{
				Age: Range{40, 60}, RestingHR: Range{75, 90},
				HRVSDNN: Range{25, 50}, HRVRMSSD: Range{15, 30},
				SystolicBP: Range{125, 145}, DiastolicBP: Range{80, 92}, BMI: Range{25, 31},
			},
			Fatigue: FatigueRanges{
				LastSleep: Range{5, 7}, AvgSleep: Range{5, 7},
				HoursAwake: Range{10, 18}, CurrentHour: Range{14, 23},
				ShiftTypes: []string{"day", "rotating"},
			},
		},
		{
			Name:   "critical",
			Weight: 1,
			Cardiac: CardiacRanges{
				Age: Range{55, 80}, RestingHR: Range{88, 110},
				HRVSDNN: Range{10, 30}, HRVRMSSD: Range{5, 20},
				SystolicBP: Range{140, 180}, DiastolicBP: Range{88, 110}, BMI: Range{29, 40},
			},
			Fatigue: FatigueRanges{
				LastSleep: Range{2, 5}, AvgSleep: Range{3, 5.5},
				HoursAwake: Range{16, 26}, CurrentHour: Range{0, 6},
				ShiftTypes: []string{"night", "rotating"},
			},
		},
	}
}

// LoadProfile reads a YAML profile file:
//
//	profiles:
//	  - name: nightshift
//	    weight: 1
//	    cardiac: {age: {min: 30, max: 50}, ...}
//	    fatigue: {hours_awake: {min: 14, max: 22}, ...}
func LoadProfile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidProfile, path, err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidProfile, path, err)
	}
	if len(pf.Profiles) == 0 {
		return nil, fmt.Errorf("%w: %s defines no profiles", ErrInvalidProfile, path)
	}
	for i := range pf.Profiles {
		if err := pf.Profiles[i].validate(); err != nil {
			return nil, err
		}
	}
	return pf.Profiles, nil
}

func (p *Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: profile without name", ErrInvalidProfile)
	}
	if p.Weight <= 0 {
		return fmt.Errorf("%w: %s: weight must be > 0", ErrInvalidProfile, p.Name)
	}

	ranges := map[string]Range{
		"age":                       p.Cardiac.Age,
		"resting_hr":                p.Cardiac.RestingHR,
		"hrv_sdnn":                  p.Cardiac.HRVSDNN,
		"hrv_rmssd":                 p.Cardiac.HRVRMSSD,
		"systolic_bp":               p.Cardiac.SystolicBP,
		"diastolic_bp":              p.Cardiac.DiastolicBP,
		"bmi":                       p.Cardiac.BMI,
		"last_sleep_duration_hours": p.Fatigue.LastSleep,
		"avg_sleep_7days":           p.Fatigue.AvgSleep,
		"hours_awake":               p.Fatigue.HoursAwake,
		"current_hour":              p.Fatigue.CurrentHour,
	}
	for field, r := range ranges {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%w: %s.%s: need 0 <= min <= max", ErrInvalidProfile, p.Name, field)
		}
	}
	if p.Fatigue.CurrentHour.Max > 23 {
		return fmt.Errorf("%w: %s.current_hour: max is 23", ErrInvalidProfile, p.Name)
	}
	return nil
}

package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultProfiles(t *testing.T) {
	convey.Convey("Given the built-in profiles", t, func() {
		profiles := DefaultProfiles()

		convey.Convey("Then there are three valid populations", func() {
			convey.So(profiles, convey.ShouldHaveLength, 3)
			for i := range profiles {
				convey.So(profiles[i].validate(), convey.ShouldBeNil)
			}
			convey.So(profiles[0].Name, convey.ShouldEqual, "healthy")
			convey.So(profiles[2].Name, convey.ShouldEqual, "critical")
		})
	})
}

func TestLoadProfile(t *testing.T) {
	convey.Convey("Given a YAML profile file", t, func() {
		path := writeFile(t, `
profiles:
  - name: nightshift
    weight: 2
    cardiac:
      age: {min: 30, max: 50}
      resting_hr: {min: 60, max: 80}
      hrv_sdnn: {min: 30, max: 60}
      hrv_rmssd: {min: 20, max: 40}
      systolic_bp: {min: 110, max: 130}
      diastolic_bp: {min: 70, max: 85}
      bmi: {min: 21, max: 27}
    fatigue:
      last_sleep_duration_hours: {min: 4, max: 6}
      avg_sleep_7days: {min: 5, max: 6.5}
      hours_awake: {min: 14, max: 22}
      current_hour: {min: 0, max: 5}
      shift_types: [night]
`)

		convey.Convey("Then it is parsed", func() {
			profiles, err := LoadProfile(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(profiles, convey.ShouldHaveLength, 1)
			convey.So(profiles[0].Name, convey.ShouldEqual, "nightshift")
			convey.So(profiles[0].Weight, convey.ShouldEqual, 2)
			convey.So(profiles[0].Fatigue.AvgSleep, convey.ShouldResemble, Range{Min: 5, Max: 6.5})
			convey.So(profiles[0].Fatigue.ShiftTypes, convey.ShouldResemble, []string{"night"})
		})
	})

	convey.Convey("Given invalid profile files", t, func() {
		cases := map[string]string{
			"empty":        "profiles: []\n",
			"no name":      "profiles:\n  - weight: 1\n",
			"zero weight":  "profiles:\n  - name: x\n",
			"inverted":     "profiles:\n  - name: x\n    weight: 1\n    cardiac:\n      bmi: {min: 30, max: 20}\n",
			"late hour":    "profiles:\n  - name: x\n    weight: 1\n    fatigue:\n      current_hour: {min: 0, max: 24}\n",
			"not yaml map": "profiles: 12\n",
		}
		for name, body := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				_, err := LoadProfile(writeFile(t, body))
				convey.So(errors.Is(err, ErrInvalidProfile), convey.ShouldBeTrue)
			})
		}

		convey.Convey("And a missing file is reported", func() {
			_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(errors.Is(err, ErrInvalidProfile), convey.ShouldBeTrue)
		})
	})
}

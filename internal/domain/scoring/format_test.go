package scoring

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatFloat(t *testing.T) {
	Convey("Given floats to interpolate into factor text", t, func() {
		cases := map[float64]string{
			0:       "0.0",
			95:      "95.0",
			32.5:    "32.5",
			6.25:    "6.25",
			0.1:     "0.1",
			1234567: "1234567.0",
			0.0001:  "0.0001",
			0.00001: "1e-05",
			1e16:    "1e+16",
			1.5e16:  "1.5e+16",
		}
		for in, want := range cases {
			So(formatFloat(in), ShouldEqual, want)
		}
	})
}

func TestFormatFixed1(t *testing.T) {
	Convey("Given deficits to print with one decimal", t, func() {
		So(formatFixed1(4), ShouldEqual, "4.0")
		So(formatFixed1(2.25), ShouldEqual, "2.2")
		So(formatFixed1(2.75), ShouldEqual, "2.8")
		So(formatFixed1(3.14159), ShouldEqual, "3.1")
	})
}

func TestRound1(t *testing.T) {
	Convey("Given scores to round", t, func() {
		So(round1(19.7642), ShouldEqual, 19.8)
		So(round1(44.1421), ShouldEqual, 44.1)
		So(round1(100), ShouldEqual, 100.0)
		So(round1(0.25), ShouldEqual, 0.2)
	})
}

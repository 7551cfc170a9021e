package planviews

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatUCB(t *testing.T) {
	Convey("Given an unvisited action", t, func() {
		Convey("FormatUCB reports it as unvisited rather than +Inf", func() {
			So(FormatUCB(math.Inf(1), 0), ShouldEqual, "unvisited")
		})
	})

	Convey("Given a visited action", t, func() {
		Convey("FormatUCB renders its score to three decimals", func() {
			So(FormatUCB(12.5, 3), ShouldEqual, "12.500")
		})
	})
}

func TestHistogram(t *testing.T) {
	Convey("Given state counts over a nonempty belief", t, func() {
		counts := map[string]int{"a": 3, "b": 1}
		bars := Histogram(counts, 4)

		Convey("Each bar's percentage reflects its share of the total", func() {
			So(len(bars), ShouldEqual, 2)
			for _, bar := range bars {
				switch bar.Label {
				case "a":
					So(bar.Pct, ShouldEqual, 75)
				case "b":
					So(bar.Pct, ShouldEqual, 25)
				default:
					So(bar.Label, ShouldBeIn, []string{"a", "b"})
				}
			}
		})
	})

	Convey("Given a zero total", t, func() {
		Convey("Histogram returns zero-percent bars instead of dividing by zero", func() {
			bars := Histogram(map[string]int{"a": 0}, 0)
			So(len(bars), ShouldEqual, 1)
			So(bars[0].Pct, ShouldEqual, 0)
		})
	})
}

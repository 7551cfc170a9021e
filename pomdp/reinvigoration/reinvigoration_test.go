package reinvigoration

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"pomcp/pomdp"
	"pomcp/pomdp/particles"
)

func TestReinvigorate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a belief of a single particle and an identity transform", t, func() {
		belief := particles.New([]int{1}, particles.ApproxNone, nil)
		identity := pomdp.StateTransformFunc[int](func(_ context.Context, s int) (int, error) {
			return s, nil
		})

		Convey("Reinvigorating to 1000 yields 1000 copies of the one particle", func() {
			out, err := Reinvigorate(ctx, belief, 1000, identity)
			So(err, ShouldBeNil)
			So(out.Len(), ShouldEqual, 1000)

			hist := out.Histogram()
			So(len(hist), ShouldEqual, 1)
			So(hist[1], ShouldEqual, 1.0)
		})
	})

	Convey("Given an empty belief", t, func() {
		belief := particles.New[int](nil, particles.ApproxNone, nil)

		Convey("Reinvigoration fails with particle deprivation", func() {
			_, err := Reinvigorate(ctx, belief, 10, nil)
			So(err, ShouldEqual, pomdp.ErrParticleDeprivation)
		})
	})

	Convey("Given a belief already at or above the target count", t, func() {
		belief := particles.New([]int{1, 2, 3, 4, 5}, particles.ApproxNone, nil)

		Convey("The copy is returned unchanged", func() {
			out, err := Reinvigorate(ctx, belief, 3, nil)
			So(err, ShouldBeNil)
			So(out.Len(), ShouldEqual, 5)
		})
	})

	Convey("Given a belief reinvigorated with a perturbing transform", t, func() {
		belief := particles.New([]int{1, 2}, particles.ApproxNone, nil)
		plusTen := pomdp.StateTransformFunc[int](func(_ context.Context, s int) (int, error) {
			return s + 10, nil
		})

		Convey("Every added particle equals transform(clone(x)) for some x in the original belief", func() {
			out, err := Reinvigorate(ctx, belief, 50, plusTen)
			So(err, ShouldBeNil)
			So(out.Len(), ShouldEqual, 50)

			for s := range out.Histogram() {
				ok := s == 1 || s == 2 || s == 11 || s == 12
				So(ok, ShouldBeTrue)
			}
		})
	})
}

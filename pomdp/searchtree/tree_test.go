package searchtree

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"pomcp/pomdp"
)

func TestTree(t *testing.T) {
	Convey("Given a fresh tree with a root and two expanded actions", t, func() {
		tr := New[string, string, struct{}]()
		tr.Root = tr.NewORNode(true, pomdp.History[string, string]{})

		andA := tr.NewANDNode(0, 0)
		andB := tr.NewANDNode(0, 0)
		tr.SetActionChild(tr.Root, "a", andA)
		tr.SetActionChild(tr.Root, "b", andB)

		Convey("BestAction picks the higher-value child", func() {
			tr.AND(andA).Value = 1.0
			tr.AND(andB).Value = 5.0
			best, ok := tr.BestAction(tr.Root)
			So(ok, ShouldBeTrue)
			So(best, ShouldEqual, "b")
		})

		Convey("Untouched AND-nodes keep num_visits_init/value_init together", func() {
			So(tr.AND(andA).NumVisits, ShouldEqual, 0)
			So(tr.AND(andA).Value, ShouldEqual, 0)
		})

		Convey("ObservationChild reports absent until explicitly set", func() {
			_, ok := tr.ObservationChild(andA, "o1")
			So(ok, ShouldBeFalse)

			leaf := tr.NewORNode(false, nil)
			tr.SetObservationChild(andA, "o1", leaf)
			got, ok := tr.ObservationChild(andA, "o1")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, leaf)
		})

		Convey("PruneTo keeps only the reachable subtree and re-roots it", func() {
			leaf := tr.NewORNode(false, nil)
			tr.SetObservationChild(andA, "o1", leaf)
			leafAnd := tr.NewANDNode(0, 0)
			tr.SetActionChild(leaf, "c", leafAnd)
			tr.AND(leafAnd).NumVisits = 7

			pruned := tr.PruneTo(leaf, pomdp.History[string, string]{{Action: "a", Observation: "o1"}})
			So(pruned.OR(pruned.Root).IsRoot, ShouldBeTrue)
			So(len(pruned.OR(pruned.Root).History), ShouldEqual, 1)

			child, ok := pruned.ActionChild(pruned.Root, "c")
			So(ok, ShouldBeTrue)
			So(pruned.AND(child).NumVisits, ShouldEqual, 7)
		})
	})
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleYaml = `
kind: pomcp
def:
  hyperParams:
    - key: discount_factor
      val: 0.95
    - key: c_ucb
      val: 1.4142135623730951
  algorithm:
    planner: pomcp
    domain: tiger
  maxDepth: 5
  planningDeadline:
    duration: 2s
`

func TestFromYaml(t *testing.T) {
	Convey("Given a yaml config file with a kind/def envelope", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		So(os.WriteFile(path, []byte(sampleYaml), 0o644), ShouldBeNil)

		Convey("FromYaml decodes the inner def into a PlannerConfig", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.MaxDepth, ShouldEqual, 5)
			So(cfg.Algorithm["planner"], ShouldEqual, "pomcp")
			So(cfg.Algorithm["domain"], ShouldEqual, "tiger")
			So(cfg.GetHyperParamOrDefault("discount_factor", -1), ShouldEqual, 0.95)
			So(cfg.GetHyperParamOrDefault("missing", 42), ShouldEqual, 42)
		})

		Convey("WithPlanningDeadline derives a timeout context from the configured duration", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)

			ctx, cancel, err := cfg.WithPlanningDeadline(context.Background())
			So(err, ShouldBeNil)
			defer cancel()
			deadline, ok := ctx.Deadline()
			So(ok, ShouldBeTrue)
			So(deadline.IsZero(), ShouldBeFalse)
		})
	})

	Convey("Given a PlannerConfig with no planningDeadline", t, func() {
		cfg := &PlannerConfig{}

		Convey("WithPlanningDeadline returns a plain cancellable context", func() {
			ctx, cancel, err := cfg.WithPlanningDeadline(context.Background())
			So(err, ShouldBeNil)
			defer cancel()
			_, ok := ctx.Deadline()
			So(ok, ShouldBeFalse)
		})
	})
}

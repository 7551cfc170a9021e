package pouct

import (
	"time"

	"pomcp/pomdp"
)

// Options configures a Planner. Exactly one of NumSims/PlanningTime should
// be positive (the planning budget); if neither is, New falls back to a
// 1-second planning_time rather than failing outright.
type Options[S pomdp.State, A pomdp.Action, O pomdp.Observation] struct {
	MaxDepth       int
	PlanningTime   time.Duration
	NumSims        int
	DiscountFactor float64
	C              float64 // UCB1 exploration constant
	NumVisitsInit  int
	ValueInit      float64
	RolloutPolicy  pomdp.RolloutPolicy[S, A, O]
}

// Normalize fills in the defaults: a 1-second PlanningTime when neither
// budget is positive, DiscountFactor 0.9 when it is zero, and C sqrt(2) when
// it is zero. Exported so package pomcp's constructor (which embeds
// Options) can apply the same defaulting without duplicating it.
func (o *Options[S, A, O]) Normalize() {
	if o.NumSims <= 0 && o.PlanningTime <= 0 {
		o.PlanningTime = time.Second
	}
	if o.DiscountFactor == 0 {
		o.DiscountFactor = 0.9
	}
	if o.C == 0 {
		o.C = 1.4142135623730951 // sqrt(2), POUCT's documented default
	}
}

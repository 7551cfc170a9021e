// Package planviews renders a live planning session: the root belief as a
// histogram and the root's per-action UCB/value/visit statistics as a
// table. It replaces tabular/server/cell_views, trading the gridworld's
// [x][y][vx][vy]State projection for a POMDP planner's belief/action-stat
// projection, but continues the same "project a generic domain type down
// into a small, template-friendly view-model" idiom.
package planviews

import "fmt"

// ActionRow is one row of the action-value table view.
type ActionRow struct {
	Label     string
	NumVisits int
	Value     float64
	UCB       string
}

// BeliefBar is one bar of the belief histogram view.
type BeliefBar struct {
	Label string
	Pct   float64
}

// Snapshot is the view-model published to the dashboard on every tick.
type Snapshot struct {
	Actions []ActionRow
	Beliefs []BeliefBar
}

// NewActionRow formats a raw (label, visits, value, ucb) tuple into a
// table row; ucb is pre-formatted by the caller since math.Inf(1) has no
// single natural string form across domains (the caller knows whether
// "∞" or "unvisited" reads better for its action labels).
func NewActionRow(label string, numVisits int, value float64, ucb string) ActionRow {
	return ActionRow{Label: label, NumVisits: numVisits, Value: value, UCB: ucb}
}

// FormatUCB renders a UCB score for display, spelling out an unvisited
// action rather than printing "+Inf".
func FormatUCB(ucb float64, numVisits int) string {
	if numVisits == 0 {
		return "unvisited"
	}
	return fmt.Sprintf("%.3f", ucb)
}

// Histogram turns a label->count map into percentage-scaled bars, in no
// particular order (map iteration order is randomized); cmd/pomcp-demo's
// buildSnapshot sorts them by descending share.
func Histogram(counts map[string]int, total int) []BeliefBar {
	bars := make([]BeliefBar, 0, len(counts))
	for label, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		bars = append(bars, BeliefBar{Label: label, Pct: pct})
	}
	return bars
}

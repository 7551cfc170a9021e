package planviews

import (
	"fmt"
	"html/template"
	"strconv"

	"pomcp/dashboard/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// BeliefHistogram renders the root belief's empirical distribution as a
// set of horizontal bars, one per distinct state label, refreshed as new
// Snapshots arrive.
//
// Grounded on tabular/server/cell_views/value_function_view.go's
// ViewComponent shape; bar width in place of svg polygon fill.
type BeliefHistogram struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewBeliefHistogram builds a BeliefHistogram view fed by snapshots.
func NewBeliefHistogram(
	done <-chan struct{},
	snapshots <-chan Snapshot,
) fastview.ViewComponent {
	bh := &BeliefHistogram{id: "beliefhistogram"}
	bh.updates = channerics.Convert(done, snapshots, bh.onUpdate)
	return bh
}

func (bh *BeliefHistogram) Updates() <-chan []fastview.EleUpdate {
	return bh.updates
}

func (bh *BeliefHistogram) onUpdate(snap Snapshot) (updates []fastview.EleUpdate) {
	for i, bar := range snap.Beliefs {
		barID := bh.id + "-bar-" + strconv.Itoa(i)
		updates = append(updates, fastview.EleUpdate{
			EleId: barID + "-label",
			Ops:   []fastview.Op{{Key: "textContent", Value: fmt.Sprintf("%s (%.1f%%)", bar.Label, bar.Pct)}},
		})
		updates = append(updates, fastview.EleUpdate{
			EleId: barID + "-fill",
			Ops:   []fastview.Op{{Key: "style", Value: fmt.Sprintf("width:%.1f%%;", bar.Pct)}},
		})
	}
	return
}

// Parse builds the histogram's template fragment: one row per belief bar,
// each a label and a width-scaled div standing in for a bar chart.
func (bh *BeliefHistogram) Parse(t *template.Template) (name string, err error) {
	name = bh.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + bh.id + `">
			{{ range $i, $bar := .Beliefs }}
			<div style="display:flex;align-items:center;margin:2px;">
				<span id="` + bh.id + `-bar-{{ $i }}-label" style="width:220px;"></span>
				<div style="background:lightgray;flex:1;">
					<div id="` + bh.id + `-bar-{{ $i }}-fill" style="background:steelblue;height:12px;width:0%;"></div>
				</div>
			</div>
			{{ end }}
		</div>
		{{ end }}`)
	return
}

package planviews

import (
	"fmt"
	"html/template"
	"strconv"

	"pomcp/dashboard/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// ActionTable renders the root's per-action statistics as an html table,
// one row per action, refreshed as new Snapshots arrive.
//
// Grounded on tabular/server/cell_views/value_function_view.go's
// ViewComponent shape (onUpdate converts a view-model to []EleUpdate,
// Parse defines the view's template fragment); the isometric-surface
// plotting there has no analogue here, so this view is a plain table
// rather than an svg projection.
type ActionTable struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewActionTable builds an ActionTable view fed by snapshots.
func NewActionTable(
	done <-chan struct{},
	snapshots <-chan Snapshot,
) fastview.ViewComponent {
	at := &ActionTable{id: "actiontable"}
	at.updates = channerics.Convert(done, snapshots, at.onUpdate)
	return at
}

func (at *ActionTable) Updates() <-chan []fastview.EleUpdate {
	return at.updates
}

func (at *ActionTable) onUpdate(snap Snapshot) (updates []fastview.EleUpdate) {
	for i, row := range snap.Actions {
		rowID := at.id + "-row-" + strconv.Itoa(i)
		updates = append(updates, fastview.EleUpdate{
			EleId: rowID + "-label",
			Ops:   []fastview.Op{{Key: "textContent", Value: row.Label}},
		})
		updates = append(updates, fastview.EleUpdate{
			EleId: rowID + "-visits",
			Ops:   []fastview.Op{{Key: "textContent", Value: strconv.Itoa(row.NumVisits)}},
		})
		updates = append(updates, fastview.EleUpdate{
			EleId: rowID + "-value",
			Ops:   []fastview.Op{{Key: "textContent", Value: fmt.Sprintf("%.3f", row.Value)}},
		})
		updates = append(updates, fastview.EleUpdate{
			EleId: rowID + "-ucb",
			Ops:   []fastview.Op{{Key: "textContent", Value: row.UCB}},
		})
	}
	return
}

// Parse builds the table's template fragment. Rows are addressed by
// positional index rather than action label, since labels are
// domain-specific and may contain characters html/template's `define`
// directive can't tolerate in an id (tabular/server/fastview/value_function_view.go
// warns about the same hyphen restriction).
func (at *ActionTable) Parse(t *template.Template) (name string, err error) {
	name = at.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<table id="` + at.id + `" border="1" cellpadding="4">
			<thead>
				<tr><th>action</th><th>visits</th><th>value</th><th>ucb</th></tr>
			</thead>
			<tbody>
				{{ range $i, $row := .Actions }}
				<tr>
					<td id="` + at.id + `-row-{{ $i }}-label"></td>
					<td id="` + at.id + `-row-{{ $i }}-visits"></td>
					<td id="` + at.id + `-row-{{ $i }}-value"></td>
					<td id="` + at.id + `-row-{{ $i }}-ucb"></td>
				</tr>
				{{ end }}
			</tbody>
		</table>
		{{ end }}`)
	return
}

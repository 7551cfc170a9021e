// Package rootview wires the dashboard's view components into the main
// page: bootstrap script, func-map, and fan-in/throttle of their combined
// ele-update stream.
//
// Grounded on tabular/server/root_view/root_view.go.
package rootview

import (
	"context"
	"html/template"
	"log"
	"time"

	"pomcp/dashboard/fastview"
	"pomcp/dashboard/planviews"

	channerics "github.com/niceyeti/channerics/channels"
)

// RootView is the dashboard's index page: the container for the action
// table and belief histogram, plus the wiring of their update channels.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// New builds the root view and its child views from a stream of planner
// snapshots.
func New(
	ctx context.Context,
	snapshots <-chan planviews.Snapshot,
) *RootView {
	views, err := fastview.NewViewBuilder[planviews.Snapshot, planviews.Snapshot]().
		WithContext(ctx).
		WithModel(snapshots, func(s planviews.Snapshot) planviews.Snapshot { return s }).
		WithView(func(done <-chan struct{}, snaps <-chan planviews.Snapshot) fastview.ViewComponent {
			return planviews.NewActionTable(done, snaps)
		}).
		WithView(func(done <-chan struct{}, snaps <-chan planviews.Snapshot) fastview.ViewComponent {
			return planviews.NewBeliefHistogram(done, snaps)
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}
}

// Updates returns the main ele-update channel for all child views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, websocket bootstrap script, and
// the shared func-map child views may reference.
func (rv *RootView) Parse(parent *template.Template) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
			"max": func(i, j int) int {
				if i > j {
					return i
				}
				return j
			},
		})

	var viewTemplates []string
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			return "", parseErr
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("planner dashboard socket opened")
				};
				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (!ele) { continue }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn aggregates the child views' ele-update channels into one,
// throttled stream.
func fanIn(done <-chan struct{}, views []fastview.ViewComponent) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), time.Millisecond*20)
}

// batchify coalesces updates for the same element id received within rate,
// sending only the latest value for each.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				data[update.EleId] = update
			}

			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- slicedVals(data):
					data = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func slicedVals[K comparable, V any](m map[K]V) (vals []V) {
	for _, v := range m {
		vals = append(vals, v)
	}
	return
}

// Package fastview implements a builder pattern for simple server-pushed
// views: given an input data format, apply a transformation to a
// view-model, then multiplex that data to one or more views.
//
// Grounded on tabular/server/fastview/{models,view_builder}.go.
package fastview

import (
	"context"
	"errors"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"
)

// EleUpdate is an element identifier and a set of operations to apply to
// its attributes/content.
type EleUpdate struct {
	// EleId is the id by which to find the element.
	EleId string
	// Op keys are attribute keys or "textContent"; values are the strings
	// to which these are set. ("textContent", "abc") means ele.textContent
	// = "abc".
	Ops []Op
}

// Op is a key and value, e.g. an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent implements a server-side view: Updates delivers the chan
// of ele-updates this view pushes, Parse adds the view's template to a
// parent template, inheriting its func-map.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (string, error)
}

// ViewBuilder constructs one or more views sharing a common view-model.
// Its main responsibility is Build(): wiring the conversion and fan-out
// channels together and constructing the views.
type ViewBuilder[DataModel any, ViewModel any] struct {
	source      <-chan DataModel
	viewModelFn func(DataModel) ViewModel
	builderFns  []func(<-chan struct{}, <-chan ViewModel) ViewComponent
	done        <-chan struct{}
}

// NewViewBuilder returns a builder for a given data-model and view-model.
func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithModel sets the source channel and the conversion to the view-model
// type the registered views consume.
func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = input
	vb.viewModelFn = convert
	return vb
}

// ViewBuilderFunc builds a view from an input view-model channel and a
// done channel for cleanup.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// WithView registers a view to build. Views are returned, from Build, in
// the order they were registered.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	builderFn ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.builderFns = append(vb.builderFns, builderFn)
	return vb
}

// WithContext ensures downstream channels close when ctx is cancelled.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.done = ctx.Done()
	return vb
}

// ErrNoViews is returned when Build is called before any view was registered.
var ErrNoViews = errors.New("no views to build: WithView must be called")

// ErrNoModel is returned when Build is called before WithModel was called.
var ErrNoModel = errors.New("no model specified: WithModel must be called")

// Build wires the registered builders together, broadcasting the converted
// view-model to each, and returns the constructed views.
func (vb *ViewBuilder[DataModel, ViewModel]) Build() (views []ViewComponent, err error) {
	if len(vb.builderFns) == 0 {
		return nil, ErrNoViews
	}
	if vb.viewModelFn == nil {
		return nil, ErrNoModel
	}

	vmChan := channerics.Convert(vb.done, vb.source, vb.viewModelFn)
	vmChans := channerics.Broadcast(vb.done, vmChan, len(vb.builderFns))
	for i, build := range vb.builderFns {
		views = append(views, build(vb.done, vmChans[i]))
	}
	return
}

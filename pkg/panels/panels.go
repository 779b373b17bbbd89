// Package panels renders the dependent views of the current image: the FITS
// header viewer, file info, region statistics, and the zoom/pan controls.
//
// Every panel renders from the documents held by the store. Panels never
// mutate those documents; a plane change re-renders from data already
// fetched, except for the header viewer which asks the renderer to resend
// its fragments.
package panels

import (
	"context"
	"sync"

	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/protocol"
)

// Source is the part of *store.Store the panels read from.
type Source interface {
	View() *models.ViewState
	Pick() *models.PickResult
	Subscribe(cb func()) (unsubscribe func())
	SubscribePick(cb func()) (unsubscribe func())
}

// Sender delivers a protocol command. *store.Store satisfies it.
type Sender interface {
	Send(ctx context.Context, cmd protocol.Command) error
}

// rendered holds a panel's last output and its subscription.
type rendered struct {
	mu          sync.Mutex
	out         string
	plane       models.Plane
	unsubscribe func()
	onChange    func()
}

func (r *rendered) set(out string) {
	r.mu.Lock()
	r.out = out
	notify := r.onChange
	r.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// View returns the panel's most recent rendering.
func (r *rendered) View() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out
}

// Plane returns the selected plane.
func (r *rendered) Plane() models.Plane {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane
}

// OnChange registers fn to run after every re-render.
func (r *rendered) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Close removes the panel's store subscription.
func (r *rendered) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (r *rendered) setPlane(p models.Plane) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plane = p
}

func (r *rendered) setSubscription(unsubscribe func()) {
	r.mu.Lock()
	previous := r.unsubscribe
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
	if previous != nil {
		previous()
	}
}

// effectivePlane maps the selected plane onto the view: grayscale views
// have only the gray plane.
func effectivePlane(view *models.ViewState, selected models.Plane) models.Plane {
	if view != nil && view.DisplayMode == models.DisplayGrayscale {
		return models.PlaneGray
	}
	if selected == "" || selected == models.PlaneGray {
		return models.PlaneBlue
	}
	return selected
}

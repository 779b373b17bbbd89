package layers

import (
	"context"

	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/sirupsen/logrus"
)

// ViewStore is the part of *store.Store the layer control needs.
type ViewStore interface {
	View() *models.ViewState
	Update(fn func(v *models.ViewState)) error
	Submit(ctx context.Context, view *models.ViewState) error
}

// Control is the layer manager: it loads the overlay list into a Table and
// writes the edited table back to the renderer.
type Control struct {
	store  ViewStore
	busy   store.Busy
	opts   []Option
	table  *Table
	logger *logrus.Entry
}

// NewControl creates a layer control. opts are passed to BuildRows.
func NewControl(s ViewStore, busy store.Busy, opts ...Option) *Control {
	return &Control{
		store:  s,
		busy:   busy,
		opts:   opts,
		table:  &Table{},
		logger: logging.NewLogger("layers"),
	}
}

// Init rebuilds the rows from the store's current overlay list.
func (c *Control) Init() error {
	view := c.store.View()
	if view == nil {
		return errors.New(errors.ErrCodeInvalidViewState, "no view state loaded")
	}
	opts := append([]Option{WithLogger(c.logger)}, c.opts...)
	c.table = BuildRows(view.Overlay, opts...)
	c.logger.WithField("rows", c.table.Len()).Debug("Layer table loaded")
	return nil
}

// Table returns the rows being edited.
func (c *Control) Table() *Table {
	return c.table
}

// Commit replaces the view's overlay list with the reconciled rows and
// returns the resulting view. It must run on the goroutine that edits the
// table.
func (c *Control) Commit() (*models.ViewState, error) {
	overlays := c.table.Reconcile()
	if err := c.store.Update(func(v *models.ViewState) {
		v.Overlay = overlays
	}); err != nil {
		return nil, err
	}
	return c.store.View(), nil
}

// Submit enters the busy state and sends a committed view to the renderer.
func (c *Control) Submit(ctx context.Context, view *models.ViewState) error {
	c.busy.SetBusy(true)
	return c.store.Submit(ctx, view)
}

// Apply commits the table and submits the result.
func (c *Control) Apply(ctx context.Context) error {
	view, err := c.Commit()
	if err != nil {
		return err
	}
	return c.Submit(ctx, view)
}

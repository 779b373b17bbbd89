// Package store owns the view state and pick result documents and tells
// interested panels when either is replaced.
package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/protocol"
	"github.com/sirupsen/logrus"
)

// RemoteErrorMessage is shown when a document cannot be fetched.
const RemoteErrorMessage = "Remote service error[1]."

// Sender delivers a command line to the renderer. *transport.Client
// satisfies it.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(message string)

func (f AlertFunc) Alert(message string) { f(message) }

// Busy toggles the "working" state shown while the renderer is busy.
type Busy interface {
	SetBusy(busy bool)
}

// BusyFunc adapts a function to Busy.
type BusyFunc func(busy bool)

func (f BusyFunc) SetBusy(busy bool) { f(busy) }

type subscriber struct {
	id int
	fn func()
}

// registry is an ordered list of callbacks with explicit removal.
type registry struct {
	mu     sync.Mutex
	subs   []subscriber
	nextID int
}

func (r *registry) add(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, s := range r.subs {
				if s.id == id {
					r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify runs every callback in registration order, outside the lock so a
// callback may subscribe or unsubscribe.
func (r *registry) notify() {
	r.mu.Lock()
	subs := make([]subscriber, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Option configures a Store.
type Option func(*Store)

// WithAlerter sets where fetch failures are reported. The default logs them.
func WithAlerter(a Alerter) Option {
	return func(s *Store) { s.alerter = a }
}

// WithLogger sets the store's logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.logger = l }
}

// Store holds the current ViewState and PickResult. Only the store replaces
// them; Update is the single way to change the view.
type Store struct {
	fetcher Fetcher
	sender  Sender
	alerter Alerter
	logger  *logrus.Entry

	mu   sync.RWMutex
	view *models.ViewState
	pick *models.PickResult

	viewSubs registry
	pickSubs registry
}

// New creates a store that reads documents through fetcher and submits
// through sender.
func New(fetcher Fetcher, sender Sender, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		sender:  sender,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewLogger("store")
	}
	if s.alerter == nil {
		s.alerter = AlertFunc(func(message string) {
			s.logger.Error(message)
		})
	}
	return s
}

// View returns the current view state, or nil before the first refresh.
// Callers must treat it as read-only and use Update to change it.
func (s *Store) View() *models.ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Pick returns the latest pick result, or nil before the first pick.
func (s *Store) Pick() *models.PickResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick
}

// SetView replaces the view state without notifying anyone. It is meant for
// seeding a store from a document loaded elsewhere.
func (s *Store) SetView(v *models.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// Update applies fn to a copy of the current view state and makes the copy
// current. Views handed out earlier by View are left untouched. It fails if
// no view has been loaded yet.
func (s *Store) Update(fn func(v *models.ViewState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return errors.New(errors.ErrCodeInvalidViewState, "no view state loaded")
	}
	next := s.view.Clone()
	fn(next)
	s.view = next
	return nil
}

// Subscribe registers cb to run after every successful RefreshViewState.
// Callbacks run synchronously, in the order they were registered.
func (s *Store) Subscribe(cb func()) (unsubscribe func()) {
	return s.viewSubs.add(cb)
}

// SubscribePick registers cb to run after every successful RefreshPickResult.
func (s *Store) SubscribePick(cb func()) (unsubscribe func()) {
	return s.pickSubs.add(cb)
}

// Subscribers reports how many view and pick callbacks are registered.
func (s *Store) Subscribers() (view, pick int) {
	return s.viewSubs.len(), s.pickSubs.len()
}

// RefreshViewState fetches view.json, replaces the current view and
// notifies subscribers. On failure the user is alerted and the previous
// view stays current.
func (s *Store) RefreshViewState(ctx context.Context) error {
	data, err := s.fetcher.Fetch(ctx, ViewDocument)
	if err != nil {
		return s.fail(ViewDocument, err)
	}

	view, err := models.DecodeViewState(bytes.NewReader(data))
	if err != nil {
		return s.fail(ViewDocument, errors.DecodeFailed(ViewDocument, err))
	}

	s.mu.Lock()
	s.view = view
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"display_mode": view.DisplayMode,
		"overlays":     len(view.Overlay),
	}).Debug("View state refreshed")

	s.viewSubs.notify()
	return nil
}

// RefreshPickResult fetches pick.json, replaces the current pick result and
// notifies pick subscribers.
func (s *Store) RefreshPickResult(ctx context.Context) error {
	data, err := s.fetcher.Fetch(ctx, PickDocument)
	if err != nil {
		return s.fail(PickDocument, err)
	}

	pick, err := models.DecodePickResult(bytes.NewReader(data))
	if err != nil {
		return s.fail(PickDocument, errors.DecodeFailed(PickDocument, err))
	}

	s.mu.Lock()
	s.pick = pick
	s.mu.Unlock()

	s.logger.Debug("Pick result refreshed")
	s.pickSubs.notify()
	return nil
}

// FetchHeader returns the HTML header fragment for a plane index.
func (s *Store) FetchHeader(ctx context.Context, index int) (string, error) {
	data, err := s.fetcher.Fetch(ctx, HeaderDocument(index))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Submit serialises view and sends it as a submitUpdateRequest. The caller
// must already have applied its change to the store.
func (s *Store) Submit(ctx context.Context, view *models.ViewState) error {
	if view == nil {
		return errors.New(errors.ErrCodeInvalidViewState, "nothing to submit")
	}
	payload, err := view.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode view state")
	}
	return s.Send(ctx, protocol.SubmitUpdateRequest(payload))
}

// Send delivers one protocol command to the renderer.
func (s *Store) Send(ctx context.Context, cmd protocol.Command) error {
	s.logger.WithField("verb", cmd.Verb).Debug("Sending command")
	return s.sender.Send(ctx, cmd.String())
}

func (s *Store) fail(document string, err error) error {
	s.logger.WithError(err).WithField("document", document).Warn("Refresh failed, keeping previous state")
	s.alerter.Alert(RemoteErrorMessage)
	return err
}

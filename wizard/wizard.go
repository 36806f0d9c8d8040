// Package wizard holds the server side of the six-step booking flow:
// unit selection, details, personal info, payment, review, confirmation.
// Sessions are process-local scratch state; the booking row itself is the
// durable outcome.
package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCloseDelay is how long a completed wizard lingers on the
// confirmation step before the session is reaped.
const DefaultCloseDelay = 3 * time.Second

// DefaultSessionTTL is how long an unfinished session may idle before it is
// evicted. The wizard endpoints are unauthenticated, so abandoned sessions
// must not accumulate.
const DefaultSessionTTL = 30 * time.Minute

var (
	ErrNotFound    = fmt.Errorf("wizard session not found")
	ErrAtFirstStep = fmt.Errorf("cannot go back from the first step")
	ErrNotAtReview = fmt.Errorf("booking can only be confirmed from the review step")
	ErrAlreadyDone = fmt.Errorf("wizard already completed")
	errPastReview  = fmt.Errorf("use confirm to leave the review step")
)

type Session struct {
	ID         string    `json:"id"`
	Step       Step      `json:"step"`
	StepName   string    `json:"step_name"`
	Form       Form      `json:"form"`
	CustomerID uint      `json:"customer_id,omitempty"`
	BookingID  uint      `json:"booking_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	closeTimer *time.Timer
}

// snapshot returns a detached copy safe to read outside the store mutex.
func (sess *Session) snapshot() Session {
	copied := *sess
	copied.closeTimer = nil
	return copied
}

// Store owns all live wizard sessions. All access goes through the mutex,
// and every method hands out value copies so callers never touch a session
// another request is mutating. The confirmation auto-close timer holds only
// the session id, never the session itself.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	closeDelay time.Duration
	ttl        time.Duration
}

func NewStore(closeDelay, sessionTTL time.Duration) *Store {
	return &Store{
		sessions:   make(map[string]*Session),
		closeDelay: closeDelay,
		ttl:        sessionTTL,
	}
}

// Start opens a new session at the unit-selection step. customerID is zero
// for anonymous visitors. Expired sessions are swept here, so the map never
// grows past the set of sessions touched within one TTL.
func (s *Store) Start(customerID uint) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpired()

	sess := &Session{
		ID:         uuid.NewString(),
		Step:       StepUnitSelection,
		StepName:   StepUnitSelection.String(),
		CustomerID: customerID,
		CreatedAt:  time.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess.snapshot()
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess.snapshot(), nil
}

// Advance merges patch into the form and moves one step forward if the
// current step's gate passes. The review step can only be left via Confirm.
func (s *Store) Advance(id string, patch Form) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Step >= StepConfirmation {
		return Session{}, ErrAlreadyDone
	}
	if sess.Step == StepReview {
		return Session{}, errPastReview
	}

	merged := mergeForm(sess.Form, patch, false)
	if err := validateStep(sess.Step, merged); err != nil {
		// Gate failed: keep the merged data but stay on the current step.
		sess.Form = merged
		return sess.snapshot(), err
	}

	sess.Form = merged
	sess.Step++
	sess.StepName = sess.Step.String()
	return sess.snapshot(), nil
}

// Back moves one step backward. Always permitted except from the first step
// and after completion.
func (s *Store) Back(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Step == StepUnitSelection {
		return Session{}, ErrAtFirstStep
	}
	if sess.Step >= StepConfirmation {
		return Session{}, ErrAlreadyDone
	}

	sess.Step--
	sess.StepName = sess.Step.String()
	return sess.snapshot(), nil
}

// ReadyToConfirm checks the session is sitting on review with the terms
// agreed, merging any final patch first. The terms flag is taken verbatim
// here, so unticking the box on review works.
func (s *Store) ReadyToConfirm(id string, patch Form) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Step != StepReview {
		return Session{}, ErrNotAtReview
	}

	sess.Form = mergeForm(sess.Form, patch, true)
	if err := validateStep(StepReview, sess.Form); err != nil {
		return sess.snapshot(), err
	}
	return sess.snapshot(), nil
}

// Complete force-advances the session to confirmation, records the created
// booking and arms the auto-close timer. The timer handle is kept so Close
// can cancel it; the session never outlives closeDelay after completion.
func (s *Store) Complete(id string, customerID, bookingID uint) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}

	sess.Step = StepConfirmation
	sess.StepName = StepConfirmation.String()
	if customerID != 0 {
		sess.CustomerID = customerID
	}
	sess.BookingID = bookingID
	sess.closeTimer = time.AfterFunc(s.closeDelay, func() {
		s.Close(id)
	})
	return sess.snapshot(), nil
}

// Close tears a session down, stopping any pending auto-close timer. Safe to
// call twice; closing an unknown session is a no-op.
func (s *Store) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// lookup fetches a session, evicting it if its TTL has lapsed. Callers hold
// the mutex.
func (s *Store) lookup(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(sess.CreatedAt) > s.ttl {
		s.remove(id)
		return nil, false
	}
	return sess, true
}

// sweepExpired drops every session past its TTL. Callers hold the mutex.
func (s *Store) sweepExpired() {
	for id, sess := range s.sessions {
		if time.Since(sess.CreatedAt) > s.ttl {
			s.remove(id)
		}
	}
}

// remove deletes a session and stops its timer. Callers hold the mutex.
func (s *Store) remove(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	if sess.closeTimer != nil {
		sess.closeTimer.Stop()
		sess.closeTimer = nil
	}
	delete(s.sessions, id)
}

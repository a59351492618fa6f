package services

import (
	"context"
	"sync"
	"time"

	"alfredoptarigan/resume-reviewer/internal/models"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailure    Phase = "failure"
)

// State is one browser session's display state. Values are only built by the
// constructors below, so a State never carries both a result and an error,
// and never either of them while submitting.
type State struct {
	phase  Phase
	result *models.ReviewResult
	err    string
}

func idleState() State { return State{phase: PhaseIdle} }

func submittingState() State { return State{phase: PhaseSubmitting} }

func successState(r *models.ReviewResult) State { return State{phase: PhaseSuccess, result: r} }

func failureState(message string) State { return State{phase: PhaseFailure, err: message} }

func (s State) Phase() Phase { return s.phase }

// Loading reports whether a request is in flight.
func (s State) Loading() bool { return s.phase == PhaseSubmitting }

func (s State) Result() *models.ReviewResult { return s.result }

func (s State) Error() string { return s.err }

// FormState is what the upload form shows after a submit: the last file name
// and job description stay visible until changed.
type FormState struct {
	FileName       string
	JobDescription string
}

// Session holds the state machine for one browser.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	form     FormState
	cancel   context.CancelFunc
	gen      uint64
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		state:    idleState(),
		lastSeen: now,
	}
}

// Snapshot returns the current state and form values.
func (s *Session) Snapshot() (State, FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.form
}

// begin moves to Submitting. Error and result are dropped before the request
// is sent. There is no guard against a second begin; the last completion wins.
// The returned generation identifies this dispatch to finish.
func (s *Session) begin(form FormState, cancel context.CancelFunc, now time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state = submittingState()
	s.form = form
	s.cancel = cancel
	s.lastSeen = now
	return s.gen
}

func (s *Session) succeed(gen uint64, result *models.ReviewResult) {
	s.finish(gen, successState(result))
}

func (s *Session) fail(gen uint64, message string) {
	s.finish(gen, failureState(message))
}

func (s *Session) finish(gen uint64, next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	if gen == s.gen {
		s.cancel = nil
	}
}

// Abort cancels the in-flight request, if any. The dispatch still completes
// and moves the session to Failure.
func (s *Session) Abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.phase != PhaseSubmitting || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Reset dismisses a finished result or error. It has no effect while submitting.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.phase == PhaseSubmitting {
		return
	}
	s.state = idleState()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

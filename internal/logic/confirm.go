package logic

import "time"

// WindowState is the confirmation protocol state for one action kind.
type WindowState string

const (
	StateIdle      WindowState = "IDLE"
	StateArmed     WindowState = "ARMED"
	StateExecuting WindowState = "EXECUTING"
)

// ArmOutcome is the result of an arm signal.
type ArmOutcome int

const (
	// OutcomeArmed means a fresh confirmation window was opened.
	OutcomeArmed ArmOutcome = iota
	// OutcomeConfirmed means the signal confirmed an open window;
	// the bound operation should now be started.
	OutcomeConfirmed
	// OutcomeRearmed means the previous window had already expired;
	// it was closed and a fresh window opened in its place.
	OutcomeRearmed
	// OutcomeBusy means the operation is already executing; the signal
	// is ignored.
	OutcomeBusy
)

// Window is the arm/confirm state machine for one guarded action kind.
// Arm-then-confirm within the timeout reaches Executing; an unconfirmed
// window silently expires via Tick. Windows for different kinds are fully
// independent.
type Window struct {
	kind     ActionKind
	timeout  time.Duration
	state    WindowState
	deadline time.Time
}

// NewWindow creates an Idle Window for the given action kind.
func NewWindow(kind ActionKind, timeout time.Duration) *Window {
	return &Window{kind: kind, timeout: timeout, state: StateIdle}
}

// Arm processes an arm signal at the given time.
// Idle: opens a window with deadline now+timeout. Armed at or before the
// deadline: the signal is the confirmation, transition to Executing.
// Armed strictly after the deadline: the stale window expires first and a
// fresh one opens. Executing: ignored.
func (w *Window) Arm(now time.Time) ArmOutcome {
	switch w.state {
	case StateExecuting:
		return OutcomeBusy
	case StateArmed:
		if !now.After(w.deadline) {
			w.state = StateExecuting
			return OutcomeConfirmed
		}
		w.deadline = now.Add(w.timeout)
		return OutcomeRearmed
	default:
		w.state = StateArmed
		w.deadline = now.Add(w.timeout)
		return OutcomeArmed
	}
}

// Tick expires an unconfirmed window whose deadline has passed. It must
// be called every scheduler tick, before new input is processed, so a
// stale window can never confirm on a later unrelated hold. Returns true
// if the window expired on this call.
func (w *Window) Tick(now time.Time) bool {
	if w.state == StateArmed && now.After(w.deadline) {
		w.state = StateIdle
		return true
	}
	return false
}

// Cancel closes an open window without confirming. Returns true if a
// window was actually open.
func (w *Window) Cancel() bool {
	if w.state == StateArmed {
		w.state = StateIdle
		return true
	}
	return false
}

// Finish records the operation result arriving, Executing -> Idle.
// Returns false (and changes nothing) in any other state.
func (w *Window) Finish() bool {
	if w.state == StateExecuting {
		w.state = StateIdle
		return true
	}
	return false
}

// Kind returns the action kind this window guards.
func (w *Window) Kind() ActionKind { return w.kind }

// State returns the current protocol state.
func (w *Window) State() WindowState { return w.state }

// Deadline returns the confirmation deadline; meaningful only while Armed.
func (w *Window) Deadline() time.Time { return w.deadline }

// Timeout returns the configured confirmation timeout.
func (w *Window) Timeout() time.Duration { return w.timeout }

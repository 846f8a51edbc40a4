package display

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// Tmux reports progress on the appliance screen. The daemon runs inside
// the control window of a tmux session whose other window shows PADD;
// when an action needs operator attention the reporter selects the
// control window, prints there, and returns to PADD after a feedback
// delay once the action settles.
//
// The session itself is created by the host system, not by this daemon.
type Tmux struct {
	session       string
	paddWindow    string
	controlWindow string
	feedbackDelay time.Duration

	// runTmux is swappable for tests; defaults to exec'ing tmux.
	runTmux func(args ...string) error
	out     io.Writer

	mu    sync.Mutex
	timer *time.Timer
}

// NewTmux creates a Tmux reporter for the given session and windows.
func NewTmux(session, paddWindow, controlWindow string, feedbackDelay time.Duration) *Tmux {
	return &Tmux{
		session:       session,
		paddWindow:    paddWindow,
		controlWindow: controlWindow,
		feedbackDelay: feedbackDelay,
		runTmux:       execTmux,
		out:           os.Stdout,
	}
}

func execTmux(args ...string) error {
	cmd := exec.Command("tmux", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tmux %v: %v (%s)", args, err, out)
	}
	return nil
}

// CheckSession verifies the tmux session exists.
func (t *Tmux) CheckSession() error {
	if err := t.runTmux("has-session", "-t", t.session); err != nil {
		return fmt.Errorf("tmux session %q not found: %w", t.session, err)
	}
	return nil
}

// Progress surfaces a report on the screen. Brightness reports never
// touch the display; everything else pulls the control window forward,
// and terminal phases schedule the switch back to PADD.
func (t *Tmux) Progress(kind logic.ActionKind, phase logic.Phase, msg string) {
	if kind == logic.ActionBrightness {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch phase {
	case logic.PhaseArmed, logic.PhaseConfirmed, logic.PhaseOutput:
		t.showControlLocked()
		t.printLocked(kind, phase, msg)
	case logic.PhaseSucceeded, logic.PhaseFailed, logic.PhaseExpired, logic.PhaseCanceled:
		t.printLocked(kind, phase, msg)
		t.scheduleReturnLocked()
	default:
		t.printLocked(kind, phase, msg)
	}
}

// showControlLocked selects the control window and drops any pending
// return-to-PADD timer. Caller holds mu.
func (t *Tmux) showControlLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.selectWindow(t.controlWindow)
}

// scheduleReturnLocked switches back to PADD after the feedback delay so
// the operator can read the final message. Caller holds mu.
func (t *Tmux) scheduleReturnLocked() {
	if t.feedbackDelay <= 0 {
		t.selectWindow(t.paddWindow)
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.feedbackDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.timer = nil
		t.selectWindow(t.paddWindow)
	})
}

func (t *Tmux) selectWindow(window string) {
	target := t.session + ":" + window
	if err := t.runTmux("select-window", "-t", target); err != nil {
		log.Printf("tmux select-window %s: %v", target, err)
	}
}

func (t *Tmux) printLocked(kind logic.ActionKind, phase logic.Phase, msg string) {
	switch phase {
	case logic.PhaseOutput:
		fmt.Fprintln(t.out, msg)
	default:
		fmt.Fprintf(t.out, "[%s] %s: %s\n", kind, phase, msg)
	}
}

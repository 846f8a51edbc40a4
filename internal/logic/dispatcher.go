package logic

import (
	"fmt"
	"time"
)

// WindowSnapshot is a point-in-time view of one confirmation window.
type WindowSnapshot struct {
	State    WindowState
	Deadline time.Time
}

// Dispatcher routes classified hold events to the brightness controller,
// the confirmation windows and the injected side-effect interfaces. It
// performs no I/O itself; everything external goes through the interfaces
// supplied at construction. All methods must be called from the single
// control-loop goroutine.
type Dispatcher struct {
	brightness *Brightness
	windows    map[ActionKind]*Window

	backlight Backlight
	jobs      JobStarter
	power     Power
	reporter  Reporter

	counts EventCounts
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Brightness     *Brightness
	ConfirmTimeout time.Duration
	Backlight      Backlight
	Jobs           JobStarter
	Power          Power
	Reporter       Reporter
}

// NewDispatcher creates a Dispatcher with Idle windows for the gravity
// and system update actions.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		brightness: cfg.Brightness,
		windows: map[ActionKind]*Window{
			ActionGravity: NewWindow(ActionGravity, cfg.ConfirmTimeout),
			ActionSystem:  NewWindow(ActionSystem, cfg.ConfirmTimeout),
		},
		backlight: cfg.Backlight,
		jobs:      cfg.Jobs,
		power:     cfg.Power,
		reporter:  cfg.Reporter,
	}
}

// OnHold routes one classified hold event.
// A brightness press or a power hold while any window is Armed cancels
// the window instead of acting; the press is consumed by the cancel.
func (d *Dispatcher) OnHold(ev HoldEvent, now time.Time) {
	if ev.Button >= 0 && ev.Button < NumButtons {
		d.counts.Presses[ev.Button]++
	}

	switch ev.Tier {
	case TierBrightnessStep:
		if d.cancelArmed() {
			return
		}
		level := d.brightness.Step()
		if err := d.backlight.SetDuty(d.brightness.Duty()); err != nil {
			d.reporter.Progress(ActionBrightness, PhaseFailed, fmt.Sprintf("backlight write: %v", err))
		}
		d.reporter.Progress(ActionBrightness, PhaseInfo, fmt.Sprintf("brightness %d%%", level))

	case TierArmGravity:
		d.armOrConfirm(ActionGravity, now)

	case TierArmSystem:
		d.armOrConfirm(ActionSystem, now)

	case TierReboot:
		if d.cancelArmed() {
			return
		}
		d.reporter.Progress(ActionPower, PhaseConfirmed, fmt.Sprintf("reboot requested (held %.1fs)", ev.Held.Seconds()))
		if err := d.power.Reboot(); err != nil {
			d.reporter.Progress(ActionPower, PhaseFailed, fmt.Sprintf("reboot: %v", err))
		}

	case TierShutdown:
		if d.cancelArmed() {
			return
		}
		d.reporter.Progress(ActionPower, PhaseConfirmed, fmt.Sprintf("shutdown requested (held %.1fs)", ev.Held.Seconds()))
		if err := d.power.Shutdown(); err != nil {
			d.reporter.Progress(ActionPower, PhaseFailed, fmt.Sprintf("shutdown: %v", err))
		}
	}
}

func (d *Dispatcher) armOrConfirm(kind ActionKind, now time.Time) {
	w := d.windows[kind]
	switch w.Arm(now) {
	case OutcomeArmed:
		d.counts.Armed++
		d.reporter.Progress(kind, PhaseArmed, fmt.Sprintf("hold again within %v to confirm", w.Timeout()))
	case OutcomeRearmed:
		d.counts.Expired++
		d.reporter.Progress(kind, PhaseExpired, "previous window expired")
		d.counts.Armed++
		d.reporter.Progress(kind, PhaseArmed, fmt.Sprintf("hold again within %v to confirm", w.Timeout()))
	case OutcomeConfirmed:
		d.counts.Confirmed++
		d.reporter.Progress(kind, PhaseConfirmed, "confirmed, starting update")
		d.jobs.Start(kind)
	case OutcomeBusy:
		d.reporter.Progress(kind, PhaseInfo, "update already running")
	}
}

// cancelArmed cancels every open window and reports each cancellation.
// Returns true if at least one window was open.
func (d *Dispatcher) cancelArmed() bool {
	canceled := false
	for _, kind := range []ActionKind{ActionGravity, ActionSystem} {
		if d.windows[kind].Cancel() {
			d.counts.Canceled++
			d.reporter.Progress(kind, PhaseCanceled, "update canceled")
			canceled = true
		}
	}
	return canceled
}

// Tick expires unconfirmed windows whose deadline has passed. Call every
// scheduler tick, before processing new input.
func (d *Dispatcher) Tick(now time.Time) {
	for _, kind := range []ActionKind{ActionGravity, ActionSystem} {
		if d.windows[kind].Tick(now) {
			d.counts.Expired++
			d.reporter.Progress(kind, PhaseExpired, "confirmation window expired")
		}
	}
}

// OnResult consumes an update job's result, Executing -> Idle. A result
// for a window that is not Executing is logged via the reporter and
// otherwise ignored.
func (d *Dispatcher) OnResult(res OperationResult) {
	w, ok := d.windows[res.Kind]
	if !ok || !w.Finish() {
		d.reporter.Progress(res.Kind, PhaseInfo, "ignoring result for idle action")
		return
	}
	if res.OK {
		d.counts.Succeeded++
		d.reporter.Progress(res.Kind, PhaseSucceeded, res.Detail)
	} else {
		d.counts.Failed++
		d.reporter.Progress(res.Kind, PhaseFailed, res.Detail)
	}
}

// ApplyBrightness writes the current duty cycle to the backlight.
// Used once at startup to establish the configured default level.
func (d *Dispatcher) ApplyBrightness() error {
	return d.backlight.SetDuty(d.brightness.Duty())
}

// BrightnessLevel returns the current logical brightness in percent.
func (d *Dispatcher) BrightnessLevel() int {
	return d.brightness.Level()
}

// BrightnessDuty returns the current gamma-corrected duty cycle.
func (d *Dispatcher) BrightnessDuty() float64 {
	return d.brightness.Duty()
}

// WindowStates returns a snapshot of every confirmation window.
func (d *Dispatcher) WindowStates() map[ActionKind]WindowSnapshot {
	out := make(map[ActionKind]WindowSnapshot, len(d.windows))
	for kind, w := range d.windows {
		out[kind] = WindowSnapshot{State: w.State(), Deadline: w.Deadline()}
	}
	return out
}

// Counts returns the event counters accumulated since startup.
func (d *Dispatcher) Counts() EventCounts {
	return d.counts
}

// Package logic contains pure button-interpretation logic: debouncing,
// hold classification, brightness stepping and the confirmation protocol.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Button identifies one of the four physical push-buttons.
type Button int

const (
	ButtonBrightness Button = iota // steps display brightness
	ButtonGravity                  // arms/confirms a gravity-list update
	ButtonSystem                   // arms/confirms a Pi-hole software update
	ButtonPower                    // reboot / shutdown by hold duration

	// NumButtons is the number of physical buttons; usable as array size.
	NumButtons
)

func (b Button) String() string {
	switch b {
	case ButtonBrightness:
		return "brightness"
	case ButtonGravity:
		return "gravity"
	case ButtonSystem:
		return "system"
	case ButtonPower:
		return "power"
	}
	return "unknown"
}

// EdgeKind is the direction of a debounced transition.
type EdgeKind int

const (
	EdgePressed EdgeKind = iota
	EdgeReleased
)

// Edge is a debounced press or release transition for one button.
// Edges for a given button strictly alternate Pressed/Released.
type Edge struct {
	Button Button
	Kind   EdgeKind
	Time   time.Time
}

// Tier is the discrete action a completed press-release cycle maps to.
type Tier string

const (
	TierBrightnessStep Tier = "BRIGHTNESS_STEP"
	TierArmGravity     Tier = "ARM_GRAVITY"
	TierArmSystem      Tier = "ARM_SYSTEM"
	TierReboot         Tier = "REBOOT"
	TierShutdown       Tier = "SHUTDOWN"
)

// HoldEvent is emitted once per completed press-release cycle that
// reached a tier. Sub-threshold holds on gravity/system/power produce
// no event at all.
type HoldEvent struct {
	Button Button
	Held   time.Duration
	Tier   Tier
}

// ActionKind names a guarded or reported action category.
type ActionKind string

const (
	ActionBrightness ActionKind = "brightness"
	ActionGravity    ActionKind = "gravity"
	ActionSystem     ActionKind = "system"
	ActionPower      ActionKind = "power"
)

// Phase is a coarse progress stage reported for an action.
type Phase string

const (
	PhaseArmed     Phase = "ARMED"
	PhaseConfirmed Phase = "CONFIRMED"
	PhaseCanceled  Phase = "CANCELED"
	PhaseExpired   Phase = "EXPIRED"
	PhaseOutput    Phase = "OUTPUT"
	PhaseSucceeded Phase = "SUCCEEDED"
	PhaseFailed    Phase = "FAILED"
	PhaseInfo      Phase = "INFO"
)

// OperationResult is the outcome of an external update job, delivered
// back into the control loop by the worker goroutine.
type OperationResult struct {
	Kind   ActionKind
	OK     bool
	Detail string
}

// Thresholds holds the per-button hold-duration boundaries. All ranges
// are half-open [min, max) so tiers cannot overlap.
type Thresholds struct {
	GravityHold time.Duration // gravity button: held >= this arms
	SystemHold  time.Duration // system button: held >= this arms
	RebootMin   time.Duration // power button: [RebootMin, ShutdownMin) reboots
	ShutdownMin time.Duration // power button: held >= this shuts down
}

// EventCounts tracks per-button presses and action outcomes since startup.
type EventCounts struct {
	Presses   [NumButtons]int
	Armed     int
	Confirmed int
	Canceled  int
	Expired   int
	Succeeded int
	Failed    int
}

// Backlight writes a PWM duty cycle to the display backlight.
type Backlight interface {
	SetDuty(duty float64) error
}

// JobStarter launches a long-running update job off the control loop.
// The job's OperationResult must come back via Dispatcher.OnResult.
type JobStarter interface {
	Start(kind ActionKind)
}

// Power requests a power-state transition. Fire-and-forget: the process
// itself terminates shortly after a successful request.
type Power interface {
	Reboot() error
	Shutdown() error
}

// Reporter surfaces action progress (display, log, MQTT).
type Reporter interface {
	Progress(kind ActionKind, phase Phase, message string)
}

package logic

import "time"

// HoldClassifier measures press-to-release duration and maps it to an
// action tier. One HoldEvent at most per completed press-release cycle.
type HoldClassifier struct {
	thresholds Thresholds
	pressedAt  [NumButtons]time.Time
	pressed    [NumButtons]bool
}

// NewHoldClassifier creates a classifier with the given thresholds.
func NewHoldClassifier(t Thresholds) *HoldClassifier {
	return &HoldClassifier{thresholds: t}
}

// OnEdge consumes a debounced edge. A Pressed edge records the start time
// and emits nothing. A Released edge classifies the measured hold and
// emits the matching HoldEvent, or nil when no tier covers the duration.
// A Released with no matching prior Pressed (e.g. restart mid-press) is
// ignored.
func (c *HoldClassifier) OnEdge(e Edge) *HoldEvent {
	if e.Button < 0 || e.Button >= NumButtons {
		return nil
	}

	if e.Kind == EdgePressed {
		c.pressedAt[e.Button] = e.Time
		c.pressed[e.Button] = true
		return nil
	}

	if !c.pressed[e.Button] {
		return nil
	}
	c.pressed[e.Button] = false

	held := e.Time.Sub(c.pressedAt[e.Button])
	tier, ok := c.classify(e.Button, held)
	if !ok {
		return nil
	}
	return &HoldEvent{Button: e.Button, Held: held, Tier: tier}
}

func (c *HoldClassifier) classify(btn Button, held time.Duration) (Tier, bool) {
	switch btn {
	case ButtonBrightness:
		// Any completed press steps brightness.
		return TierBrightnessStep, true
	case ButtonGravity:
		if held >= c.thresholds.GravityHold {
			return TierArmGravity, true
		}
	case ButtonSystem:
		if held >= c.thresholds.SystemHold {
			return TierArmSystem, true
		}
	case ButtonPower:
		if held >= c.thresholds.ShutdownMin {
			return TierShutdown, true
		}
		if held >= c.thresholds.RebootMin {
			return TierReboot, true
		}
	}
	return "", false
}

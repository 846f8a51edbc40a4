package logic

import "time"

// buttonDebounce tracks debounce state for a single button.
type buttonDebounce struct {
	// Current stable (debounced) pressed level
	stable bool
	// Candidate level during debounce
	pending bool
	// Whether a candidate is being observed
	hasPending bool
	// Time when the candidate was first observed
	pendingSince time.Time
	// Whether a baseline level has been established
	baselined bool
}

// Debouncer filters raw per-button samples into clean press/release edges.
// A candidate level change becomes an edge only after it has persisted for
// the configured interval; flicker shorter than that emits nothing.
type Debouncer struct {
	interval time.Duration
	buttons  [NumButtons]buttonDebounce
}

// NewDebouncer creates a Debouncer with the given debounce interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Observe feeds one raw sample for a button. It returns the resulting
// debounced edge, or nil if the sample did not complete a stable transition.
// No edge is ever emitted before the button's baseline level is established.
func (d *Debouncer) Observe(btn Button, pressed bool, now time.Time) *Edge {
	if btn < 0 || btn >= NumButtons {
		return nil
	}
	b := &d.buttons[btn]

	if !b.baselined {
		if !b.hasPending || b.pending != pressed {
			// Start (or restart) observing the baseline candidate.
			b.pending = pressed
			b.hasPending = true
			b.pendingSince = now
			return nil
		}
		if now.Sub(b.pendingSince) >= d.interval {
			b.stable = pressed
			b.baselined = true
			b.hasPending = false
		}
		return nil
	}

	if pressed == b.stable {
		// Back at the stable level, drop any candidate.
		b.hasPending = false
		return nil
	}

	if !b.hasPending || b.pending != pressed {
		b.pending = pressed
		b.hasPending = true
		b.pendingSince = now
		return nil
	}

	if now.Sub(b.pendingSince) < d.interval {
		return nil
	}

	b.stable = pressed
	b.hasPending = false

	kind := EdgeReleased
	if pressed {
		kind = EdgePressed
	}
	return &Edge{Button: btn, Kind: kind, Time: now}
}

// IsBaselined reports whether all buttons have an established baseline.
func (d *Debouncer) IsBaselined() bool {
	for i := range d.buttons {
		if !d.buttons[i].baselined {
			return false
		}
	}
	return true
}

// Stable returns the current stable pressed level for a button.
func (d *Debouncer) Stable(btn Button) bool {
	if btn < 0 || btn >= NumButtons {
		return false
	}
	return d.buttons[btn].stable
}

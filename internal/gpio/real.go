//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// RealReader reads the buttons from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines [logic.NumButtons]*gpiocdev.Line
}

// NewRealReader requests the four button lines on the given pins.
// Buttons are wired between the pin and ground, so lines are requested
// as input with pull-up; a pressed button reads raw 0.
func NewRealReader(pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip}
	for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
		line, err := chip.RequestLine(pins[btn], gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", btn, pins[btn], err)
		}
		r.lines[btn] = line
	}
	return r, nil
}

// Read returns the logical pressed state per button.
// Inverts raw GPIO: raw 0 = pressed (active low), raw 1 = released.
func (r *RealReader) Read() ([logic.NumButtons]bool, error) {
	var pressed [logic.NumButtons]bool
	for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
		raw, err := r.lines[btn].Value()
		if err != nil {
			return pressed, fmt.Errorf("read %s pin: %w", btn, err)
		}
		pressed[btn] = raw == 0
	}
	return pressed, nil
}

// Close releases GPIO resources. Lines are reconfigured to input with
// pull-up before closing so the buttons keep a defined idle level during
// reboot/shutdown.
func (r *RealReader) Close() error {
	var errs []error

	for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
		line := r.lines[btn]
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", btn, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", btn, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

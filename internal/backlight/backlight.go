// Package backlight drives the display backlight PWM output.
// The real implementation writes to a sysfs PWM channel; the fake
// records duty cycles for tests. Gamma correction happens upstream in
// internal/logic — this package only ever sees final duty cycles.
package backlight

// Backlight writes a duty cycle in [0,1] to the display backlight.
type Backlight interface {
	SetDuty(duty float64) error
	Close() error
}

// Nop is a Backlight that does nothing. Used when PWM hardware is
// unavailable so the buttons keep working without a controllable
// backlight.
type Nop struct{}

// SetDuty discards the value.
func (Nop) SetDuty(duty float64) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

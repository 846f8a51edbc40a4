// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/pihole-buttons/internal/logic"

// Reader reads the logical pressed state of all buttons.
type Reader interface {
	// Read returns the logical pressed state per button.
	// The raw GPIO values are inverted: buttons are wired active-low
	// with internal pull-ups, so raw 0 = pressed.
	Read() ([logic.NumButtons]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pins maps each button to a BCM line number.
type Pins [logic.NumButtons]int

// Default pin assignments (BCM numbering).
const (
	DefaultPinBrightness = 17
	DefaultPinGravity    = 27
	DefaultPinSystem     = 22
	DefaultPinPower      = 23
)

// DefaultPins returns the default button-to-pin mapping.
func DefaultPins() Pins {
	var p Pins
	p[logic.ButtonBrightness] = DefaultPinBrightness
	p[logic.ButtonGravity] = DefaultPinGravity
	p[logic.ButtonSystem] = DefaultPinSystem
	p[logic.ButtonPower] = DefaultPinPower
	return p
}

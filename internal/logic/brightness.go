package logic

import "math"

// BrightnessStep is the level change per button press, in percent.
const BrightnessStep = 10

// Brightness owns the logical backlight level (0-100 in steps of 10) and
// the gamma-corrected duty-cycle conversion. The PWM write itself happens
// outside this package.
type Brightness struct {
	level int
	gamma float64
}

// NewBrightness creates a Brightness at the given starting level.
// The level is clamped to [0,100] and snapped to the nearest step.
func NewBrightness(level int, gamma float64) *Brightness {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	level = (level / BrightnessStep) * BrightnessStep
	return &Brightness{level: level, gamma: gamma}
}

// Step decrements the level by one step, wrapping to 100 below 0
// (100 -> 90 -> ... -> 0 -> 100), and returns the new level.
func (b *Brightness) Step() int {
	if b.level == 0 {
		b.level = 100
	} else {
		b.level -= BrightnessStep
	}
	return b.level
}

// Level returns the current level in percent.
func (b *Brightness) Level() int {
	return b.level
}

// Duty returns the gamma-corrected PWM duty cycle in [0,1] for the
// current level: (level/100)^gamma.
func (b *Brightness) Duty() float64 {
	if b.level <= 0 {
		return 0
	}
	return math.Pow(float64(b.level)/100, b.gamma)
}

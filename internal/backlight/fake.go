package backlight

// Fake records duty-cycle writes for test assertions.
type Fake struct {
	// Duties contains every value passed to SetDuty.
	Duties []float64

	// SetError, if set, will be returned by SetDuty.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFake creates a Fake backlight.
func NewFake() *Fake {
	return &Fake{}
}

// SetDuty records the duty cycle.
func (f *Fake) SetDuty(duty float64) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, duty)
	return nil
}

// Close marks the backlight as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent duty written, or -1 if none.
func (f *Fake) Last() float64 {
	if len(f.Duties) == 0 {
		return -1
	}
	return f.Duties[len(f.Duties)-1]
}

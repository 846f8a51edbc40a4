package gpio

import (
	"errors"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// Sample is a single scripted reading of all buttons (already in logical
// pressed form).
type Sample [logic.NumButtons]bool

// FakeReader is a test double that returns scripted button states.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Read() consumes
	// the next one; the last sample repeats once exhausted.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() ([logic.NumButtons]bool, error) {
	var none [logic.NumButtons]bool
	if f.ReadError != nil {
		return none, f.ReadError
	}

	if len(f.Samples) == 0 {
		return none, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return [logic.NumButtons]bool(sample), nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// Pressed returns a Sample with the given buttons pressed.
func Pressed(buttons ...logic.Button) Sample {
	var s Sample
	for _, b := range buttons {
		s[b] = true
	}
	return s
}

package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// ActionEvents contains all action events that were published.
	ActionEvents []ActionEvent

	// ActionPayloads contains the JSON payloads for action events.
	ActionPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishActionError, if set, will be returned by PublishAction.
	PublishActionError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishAction records the action event.
func (f *FakePublisher) PublishAction(event ActionEvent) error {
	if f.PublishActionError != nil {
		return f.PublishActionError
	}

	f.ActionEvents = append(f.ActionEvents, event)

	payload, err := FormatActionPayload(event)
	if err != nil {
		return err
	}
	f.ActionPayloads = append(f.ActionPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.ActionEvents = nil
	f.ActionPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishActionError = nil
	f.PublishSystemError = nil
	f.Connected = false
}

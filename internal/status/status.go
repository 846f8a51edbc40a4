// Package status provides a thread-safe status tracker for the
// pihole-buttons daemon. It is read by the HTTP handlers and serialized
// into MQTT heartbeat snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	DebounceMs       int64
	ConfirmTimeoutMs int64
	HeartbeatMs      int64
	Gamma            float64
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Brightness    int
	Duty          float64
	Windows       map[logic.ActionKind]logic.WindowSnapshot
	Baselined     bool
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// WindowRemaining returns the time left in the given confirmation window,
// zero unless the window is Armed.
func (s Snapshot) WindowRemaining(kind logic.ActionKind) time.Duration {
	w, ok := s.Windows[kind]
	if !ok || w.State != logic.StateArmed {
		return 0
	}
	remaining := w.Deadline.Sub(s.Now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets brightness, window states, baseline status and counters.
// Called from the control loop on every tick.
func (t *Tracker) Update(brightness int, duty float64, windows map[logic.ActionKind]logic.WindowSnapshot, baselined bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Brightness = brightness
	t.snap.Duty = duty
	t.snap.Windows = windows
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

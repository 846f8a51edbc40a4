// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// TopicActions is the MQTT topic for button/action events.
const TopicActions = "pihole/buttons/actions"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "pihole/buttons/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishAction sends an action progress event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishAction(event ActionEvent) error

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ActionEvent is an action progress transition (armed, confirmed,
// expired, succeeded, ...).
type ActionEvent struct {
	Timestamp time.Time
	Kind      logic.ActionKind
	Phase     logic.Phase
	Message   string
}

// SystemEvent represents a daemon lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// ActionPayload is the MQTT message payload for action events.
type ActionPayload struct {
	Action ActionInner `json:"action"`
}

// ActionInner contains the action event details.
type ActionInner struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Phase     string `json:"phase"`
	Message   string `json:"message,omitempty"`
}

// FormatActionPayload creates the JSON payload for an action event.
func FormatActionPayload(event ActionEvent) ([]byte, error) {
	payload := ActionPayload{
		Action: ActionInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Kind:      string(event.Kind),
			Phase:     string(event.Phase),
			Message:   event.Message,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for simple system events
// that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

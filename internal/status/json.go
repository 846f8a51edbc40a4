package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string                `json:"event,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	Brightness    BrightnessJSON        `json:"brightness"`
	Windows       map[string]WindowJSON `json:"windows"`
	Ready         bool                  `json:"ready"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	StartTime     string                `json:"start_time"`
	Timestamp     string                `json:"timestamp"`
	MQTT          MQTTStatus            `json:"mqtt"`
	Counts        CountsJSON            `json:"event_counts"`
	Config        ConfigJSON            `json:"config"`
}

// BrightnessJSON is the JSON representation of the backlight state.
type BrightnessJSON struct {
	Level int     `json:"level"`
	Duty  float64 `json:"duty"`
}

// WindowJSON is the JSON representation of one confirmation window.
type WindowJSON struct {
	State            string `json:"state"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses   map[string]int `json:"presses"`
	Armed     int            `json:"armed"`
	Confirmed int            `json:"confirmed"`
	Canceled  int            `json:"canceled"`
	Expired   int            `json:"expired"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64   `json:"poll_ms"`
	DebounceMs       int64   `json:"debounce_ms"`
	ConfirmTimeoutMs int64   `json:"confirm_timeout_ms"`
	HeartbeatMs      int64   `json:"heartbeat_ms"`
	Gamma            float64 `json:"gamma"`
	Broker           string  `json:"broker"`
	HTTPAddr         string  `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	windows := make(map[string]WindowJSON, len(snap.Windows))
	for kind, w := range snap.Windows {
		wj := WindowJSON{State: string(w.State)}
		if remaining := snap.WindowRemaining(kind); remaining > 0 {
			wj.RemainingSeconds = int64(remaining.Truncate(time.Second).Seconds())
		}
		windows[string(kind)] = wj
	}

	presses := make(map[string]int, int(logic.NumButtons))
	for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
		presses[btn.String()] = snap.Counts.Presses[btn]
	}

	return StatusInner{
		Brightness:    BrightnessJSON{Level: snap.Brightness, Duty: snap.Duty},
		Windows:       windows,
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:   presses,
			Armed:     snap.Counts.Armed,
			Confirmed: snap.Counts.Confirmed,
			Canceled:  snap.Counts.Canceled,
			Expired:   snap.Counts.Expired,
			Succeeded: snap.Counts.Succeeded,
			Failed:    snap.Counts.Failed,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			DebounceMs:       snap.Config.DebounceMs,
			ConfirmTimeoutMs: snap.Config.ConfirmTimeoutMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Gamma:            snap.Config.Gamma,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

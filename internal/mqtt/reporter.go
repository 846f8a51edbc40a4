package mqtt

import (
	"log"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// Reporter publishes every progress report as an MQTT action event.
// Publish failures are logged and dropped; telemetry must never stall
// the control loop.
type Reporter struct {
	pub Publisher
	now func() time.Time
}

// NewReporter wraps a Publisher as a logic.Reporter.
func NewReporter(pub Publisher) *Reporter {
	return &Reporter{pub: pub, now: time.Now}
}

// Progress publishes the report.
func (r *Reporter) Progress(kind logic.ActionKind, phase logic.Phase, msg string) {
	event := ActionEvent{
		Timestamp: r.now(),
		Kind:      kind,
		Phase:     phase,
		Message:   msg,
	}
	if err := r.pub.PublishAction(event); err != nil {
		log.Printf("mqtt: publish action: %v", err)
	}
}

package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

func TestFormatActionPayload(t *testing.T) {
	event := ActionEvent{
		Timestamp: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Kind:      logic.ActionGravity,
		Phase:     logic.PhaseArmed,
		Message:   "hold again within 30s to confirm",
	}

	data, err := FormatActionPayload(event)
	if err != nil {
		t.Fatalf("FormatActionPayload: %v", err)
	}

	var payload ActionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Action.Timestamp != "2026-01-02T15:04:05Z" {
		t.Errorf("unexpected timestamp %q", payload.Action.Timestamp)
	}
	if payload.Action.Kind != "gravity" || payload.Action.Phase != "ARMED" {
		t.Errorf("unexpected kind/phase %q/%q", payload.Action.Kind, payload.Action.Phase)
	}
	if payload.Action.Message != event.Message {
		t.Errorf("unexpected message %q", payload.Action.Message)
	}
}

func TestFormatActionPayloadOmitsEmptyMessage(t *testing.T) {
	data, err := FormatActionPayload(ActionEvent{
		Timestamp: time.Now(),
		Kind:      logic.ActionPower,
		Phase:     logic.PhaseConfirmed,
	})
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, present := raw["action"]["message"]; present {
		t.Error("empty message should be omitted")
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatal(err)
	}

	var payload SystemPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.System.Event != "SHUTDOWN" || payload.System.Reason != "SIGTERM" {
		t.Errorf("unexpected system payload %+v", payload.System)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"custom":true}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload must pass through unchanged, got %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishAction(ActionEvent{Kind: logic.ActionSystem, Phase: logic.PhaseSucceeded}); err != nil {
		t.Fatal(err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatal(err)
	}

	if len(f.ActionEvents) != 1 || len(f.SystemEvents) != 1 {
		t.Errorf("expected 1/1 recorded events, got %d/%d", len(f.ActionEvents), len(f.SystemEvents))
	}
	if len(f.ActionPayloads) != 1 || len(f.SystemPayloads) != 1 {
		t.Errorf("expected payloads recorded")
	}

	f.Reset()
	if len(f.ActionEvents) != 0 || len(f.SystemEvents) != 0 {
		t.Error("Reset should clear recorded events")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishActionError = errors.New("boom")
	if err := f.PublishAction(ActionEvent{}); err == nil {
		t.Error("expected configured action error")
	}
	f.PublishSystemError = errors.New("boom")
	if err := f.PublishSystem(SystemEvent{}); err == nil {
		t.Error("expected configured system error")
	}
}

func TestReporterPublishes(t *testing.T) {
	f := NewFakePublisher()
	r := NewReporter(f)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.Progress(logic.ActionGravity, logic.PhaseExpired, "confirmation window expired")

	if len(f.ActionEvents) != 1 {
		t.Fatalf("expected one published event, got %d", len(f.ActionEvents))
	}
	e := f.ActionEvents[0]
	if e.Kind != logic.ActionGravity || e.Phase != logic.PhaseExpired || !e.Timestamp.Equal(fixed) {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestReporterSwallowsPublishErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishActionError = errors.New("broker down")
	r := NewReporter(f)

	// Must not panic or propagate; the control loop cannot stall on telemetry.
	r.Progress(logic.ActionSystem, logic.PhaseFailed, "update failed")
}

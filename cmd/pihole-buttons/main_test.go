package main

import (
	"errors"
	"math"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/pihole-buttons/internal/backlight"
	"github.com/sweeney/pihole-buttons/internal/gpio"
	"github.com/sweeney/pihole-buttons/internal/logic"
	"github.com/sweeney/pihole-buttons/internal/mqtt"
	"github.com/sweeney/pihole-buttons/internal/ops"
	"github.com/sweeney/pihole-buttons/internal/status"
)

// Test scripts use a 100ms tick with a 50ms debounce: any level that
// persists for two consecutive ticks becomes stable. Baseline therefore
// needs 2 ticks, a press edge lands on the 2nd pressed tick and a
// release edge on the 2nd released tick, so a run of p pressed samples
// measures a hold of exactly p*100ms.
const tickStep = 100 * time.Millisecond

var testThresholds = logic.Thresholds{
	GravityHold: 1 * time.Second,
	SystemHold:  2 * time.Second,
	RebootMin:   2 * time.Second,
	ShutdownMin: 5 * time.Second,
}

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of sample.
func repeat(sample gpio.Sample, n int) []gpio.Sample {
	out := make([]gpio.Sample, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// script concatenates sample runs.
func script(runs ...[]gpio.Sample) []gpio.Sample {
	var out []gpio.Sample
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}

// faultReader wraps a FakeReader and returns errors for a range of Read() calls.
type faultReader struct {
	inner      *gpio.FakeReader
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (r *faultReader) Read() ([logic.NumButtons]bool, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		var none [logic.NumButtons]bool
		return none, errors.New("gpio fault")
	}
	return r.inner.Read()
}

func (r *faultReader) Close() error { return r.inner.Close() }

// syncStarter satisfies logic.JobStarter by running the job inline and
// parking the result on the buffered channel, so the loop picks it up
// on the next tick without goroutine timing in the way.
type syncStarter struct {
	runner  *ops.FakeRunner
	results chan logic.OperationResult
}

func (s *syncStarter) Start(kind logic.ActionKind) {
	s.results <- s.runner.Run(kind)
}

type loopFixture struct {
	reader  gpio.Reader
	pub     *mqtt.FakePublisher
	bl      *backlight.Fake
	runner  *ops.FakeRunner
	power   *ops.FakePower
	tracker *status.Tracker
	disp    *logic.Dispatcher
	results chan logic.OperationResult
}

func newLoopFixture(samples []gpio.Sample, confirmTimeout time.Duration) *loopFixture {
	f := &loopFixture{
		reader:  gpio.NewFakeReader(samples),
		pub:     mqtt.NewFakePublisher(),
		bl:      backlight.NewFake(),
		runner:  &ops.FakeRunner{},
		power:   &ops.FakePower{},
		tracker: status.NewTracker(time.Now(), status.Config{}),
		results: make(chan logic.OperationResult, 4),
	}
	f.disp = logic.NewDispatcher(logic.DispatcherConfig{
		Brightness:     logic.NewBrightness(100, 2.2),
		ConfirmTimeout: confirmTimeout,
		Backlight:      f.bl,
		Jobs:           &syncStarter{runner: f.runner, results: f.results},
		Power:          f.power,
		Reporter:       mqtt.NewReporter(f.pub),
	})
	return f
}

// run drives runLoop with nTicks ticks followed by a signal.
func (f *loopFixture) run(t *testing.T, heartbeat time.Duration, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), tickStep)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(f.reader, f.disp, f.results, f.pub, f.pub, f.tracker,
			50*time.Millisecond, testThresholds, heartbeat, clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

// phases returns the published phases for one action kind, in order.
func (f *loopFixture) phases(kind logic.ActionKind) []logic.Phase {
	var out []logic.Phase
	for _, ev := range f.pub.ActionEvents {
		if ev.Kind == kind {
			out = append(out, ev.Phase)
		}
	}
	return out
}

func TestRunLoopIdle(t *testing.T) {
	samples := repeat(gpio.Sample{}, 10)
	f := newLoopFixture(samples, 30*time.Second)

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(f.pub.ActionEvents) != 0 {
		t.Errorf("expected no action events, got %+v", f.pub.ActionEvents)
	}
	if len(f.pub.SystemEvents) != 1 || f.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Fatalf("expected exactly a SHUTDOWN event, got %+v", f.pub.SystemEvents)
	}
}

func TestRunLoopBrightnessPress(t *testing.T) {
	// Short press on the brightness button: 100% -> 90%.
	samples := script(
		repeat(gpio.Sample{}, 2), // baseline
		repeat(gpio.Pressed(logic.ButtonBrightness), 2),
		repeat(gpio.Sample{}, 2),
	)
	f := newLoopFixture(samples, 30*time.Second)

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	want := math.Pow(0.9, 2.2)
	if got := f.bl.Last(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected duty %.4f after one step, got %.4f", want, got)
	}
	if got := f.phases(logic.ActionBrightness); len(got) != 1 || got[0] != logic.PhaseInfo {
		t.Errorf("expected one INFO report, got %v", got)
	}
}

func TestRunLoopGravityArmConfirmExecute(t *testing.T) {
	// Two 1.2s holds on the gravity button: arm, then confirm. The job
	// result comes back on a later tick and settles the window.
	samples := script(
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonGravity), 12),
		repeat(gpio.Sample{}, 2), // release -> ARMED
		repeat(gpio.Pressed(logic.ButtonGravity), 12),
		repeat(gpio.Sample{}, 4), // release -> CONFIRMED, then result drain
	)
	f := newLoopFixture(samples, 30*time.Second)
	f.runner.Results = map[logic.ActionKind]logic.OperationResult{
		logic.ActionGravity: {Kind: logic.ActionGravity, OK: true, Detail: "gravity list updated"},
	}

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(f.runner.Calls) != 1 || f.runner.Calls[0] != logic.ActionGravity {
		t.Fatalf("expected one gravity job, got %v", f.runner.Calls)
	}
	want := []logic.Phase{logic.PhaseArmed, logic.PhaseConfirmed, logic.PhaseSucceeded}
	got := f.phases(logic.ActionGravity)
	if len(got) != len(want) {
		t.Fatalf("expected phases %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected phases %v, got %v", want, got)
		}
	}
}

func TestRunLoopWindowExpiry(t *testing.T) {
	// Arm gravity with a 2s confirmation timeout, then go idle until the
	// window expires. The job must never start.
	samples := script(
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonGravity), 12),
		repeat(gpio.Sample{}, 30), // idle past the deadline
	)
	f := newLoopFixture(samples, 2*time.Second)

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(f.runner.Calls) != 0 {
		t.Errorf("expected no jobs, got %v", f.runner.Calls)
	}
	got := f.phases(logic.ActionGravity)
	if len(got) != 2 || got[0] != logic.PhaseArmed || got[1] != logic.PhaseExpired {
		t.Errorf("expected ARMED then EXPIRED, got %v", got)
	}
}

func TestRunLoopPowerReboot(t *testing.T) {
	// 2.5s hold on the power button: reboot fires directly, no window.
	samples := script(
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonPower), 25),
		repeat(gpio.Sample{}, 2),
	)
	f := newLoopFixture(samples, 30*time.Second)

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if f.power.Reboots != 1 || f.power.Shutdowns != 0 {
		t.Errorf("expected exactly one reboot, got %d/%d", f.power.Reboots, f.power.Shutdowns)
	}
}

func TestRunLoopPowerCancelsArmedWindow(t *testing.T) {
	// Arm gravity, then a reboot-length power hold: the window is
	// canceled and the power request is consumed by the cancel.
	samples := script(
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonGravity), 12),
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonPower), 25),
		repeat(gpio.Sample{}, 2),
	)
	f := newLoopFixture(samples, 30*time.Second)

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if f.power.Reboots != 0 {
		t.Errorf("reboot should have been consumed by the cancel, got %d", f.power.Reboots)
	}
	got := f.phases(logic.ActionGravity)
	if len(got) != 2 || got[1] != logic.PhaseCanceled {
		t.Errorf("expected ARMED then CANCELED, got %v", got)
	}
}

func TestRunLoopGPIOReadError(t *testing.T) {
	// 2 valid reads, then 2 faults, then recovery. The loop continues
	// past errors, still debounces afterwards and publishes SHUTDOWN.
	inner := gpio.NewFakeReader(script(
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonBrightness), 2),
		repeat(gpio.Sample{}, 2),
	))
	f := newLoopFixture(nil, 30*time.Second)
	f.reader = &faultReader{inner: inner, faultStart: 2, faultEnd: 4}

	if err := f.run(t, 0, 8, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if got := f.phases(logic.ActionBrightness); len(got) != 1 {
		t.Errorf("expected brightness press after recovery, got %v", got)
	}
	if len(f.pub.SystemEvents) != 1 || f.pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN despite GPIO errors, got %+v", f.pub.SystemEvents)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// 1s heartbeat at a 100ms tick: the 10th tick crosses the interval.
	samples := repeat(gpio.Sample{}, 12)
	f := newLoopFixture(samples, 30*time.Second)

	if err := f.run(t, 1*time.Second, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heartbeats int
	for _, se := range f.pub.SystemEvents {
		if se.Event == "HEARTBEAT" {
			heartbeats++
			if !strings.Contains(string(se.RawPayload), `"HEARTBEAT"`) {
				t.Errorf("heartbeat payload missing event marker: %s", se.RawPayload)
			}
		}
	}
	if heartbeats != 1 {
		t.Errorf("expected 1 HEARTBEAT, got %d (%+v)", heartbeats, f.pub.SystemEvents)
	}
}

func TestRunLoopShutdownReason(t *testing.T) {
	for _, tc := range []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
	} {
		samples := repeat(gpio.Sample{}, 4)
		f := newLoopFixture(samples, 30*time.Second)

		if err := f.run(t, 0, len(samples), tc.sig); err != nil {
			t.Fatalf("runLoop returned error: %v", err)
		}

		if len(f.pub.SystemEvents) != 1 {
			t.Fatalf("expected 1 system event, got %d", len(f.pub.SystemEvents))
		}
		se := f.pub.SystemEvents[0]
		if se.Event != "SHUTDOWN" || se.Reason != tc.want || !se.Retained {
			t.Errorf("unexpected shutdown event %+v, want reason %s", se, tc.want)
		}
	}
}

func TestRunLoopTrackerUpdated(t *testing.T) {
	samples := script(
		repeat(gpio.Sample{}, 2),
		repeat(gpio.Pressed(logic.ButtonBrightness), 2),
		repeat(gpio.Sample{}, 2),
	)
	f := newLoopFixture(samples, 30*time.Second)
	f.pub.Connected = true

	if err := f.run(t, 0, len(samples), syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	snap := f.tracker.Snapshot()
	if snap.Brightness != 90 {
		t.Errorf("expected tracker brightness 90, got %d", snap.Brightness)
	}
	if !snap.Baselined || !snap.MQTTConnected {
		t.Error("expected baselined and connected in tracker")
	}
	if snap.Counts.Presses[logic.ButtonBrightness] != 1 {
		t.Errorf("unexpected counts %+v", snap.Counts)
	}
}

func TestPressedString(t *testing.T) {
	if pressedString(true) != "PRESSED" || pressedString(false) != "RELEASED" {
		t.Error("unexpected pressedString output")
	}
}

// Package display surfaces action progress to the appliance operator.
// The tmux reporter flips the physical screen between the PADD
// monitoring pane and the control pane; the log reporter mirrors
// everything to the process log; Multi fans out to several reporters.
package display

import (
	"log"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// LogReporter writes every progress report to the process log.
type LogReporter struct{}

// Progress logs the report.
func (LogReporter) Progress(kind logic.ActionKind, phase logic.Phase, msg string) {
	log.Printf("%s: %s %s", kind, phase, msg)
}

// Multi fans a progress report out to several reporters in order.
type Multi []logic.Reporter

// Progress delivers the report to every reporter.
func (m Multi) Progress(kind logic.ActionKind, phase logic.Phase, msg string) {
	for _, r := range m {
		r.Progress(kind, phase, msg)
	}
}

// Record is one captured progress report.
type Record struct {
	Kind  logic.ActionKind
	Phase logic.Phase
	Msg   string
}

// FakeReporter records progress reports for test assertions.
type FakeReporter struct {
	Records []Record
}

// Progress records the report.
func (f *FakeReporter) Progress(kind logic.ActionKind, phase logic.Phase, msg string) {
	f.Records = append(f.Records, Record{Kind: kind, Phase: phase, Msg: msg})
}

// Phases returns the recorded phases for one action kind.
func (f *FakeReporter) Phases(kind logic.ActionKind) []logic.Phase {
	var out []logic.Phase
	for _, r := range f.Records {
		if r.Kind == kind {
			out = append(out, r.Phase)
		}
	}
	return out
}

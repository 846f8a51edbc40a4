package ops

import "github.com/sweeney/pihole-buttons/internal/logic"

// FakeRunner returns scripted results and records invocations.
type FakeRunner struct {
	// Results maps action kinds to the result Run returns. Missing kinds
	// succeed with an empty detail.
	Results map[logic.ActionKind]logic.OperationResult

	// Calls records every kind Run was invoked with.
	Calls []logic.ActionKind
}

// Run records the call and returns the scripted result.
func (f *FakeRunner) Run(kind logic.ActionKind) logic.OperationResult {
	f.Calls = append(f.Calls, kind)
	if res, ok := f.Results[kind]; ok {
		return res
	}
	return logic.OperationResult{Kind: kind, OK: true}
}

// FakePower records power requests.
type FakePower struct {
	Reboots   int
	Shutdowns int

	// Err, if set, is returned by both Reboot and Shutdown.
	Err error
}

// Reboot records the request.
func (f *FakePower) Reboot() error {
	f.Reboots++
	return f.Err
}

// Shutdown records the request.
func (f *FakePower) Shutdown() error {
	f.Shutdowns++
	return f.Err
}

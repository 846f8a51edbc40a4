// Package ops runs the external maintenance operations: the gravity-list
// and Pi-hole update jobs and the reboot/shutdown requests. Commands are
// configured as shell-style strings and executed directly (no shell).
package ops

import "github.com/sweeney/pihole-buttons/internal/logic"

// Runner executes an update job to completion and reports its outcome.
// Run blocks; AsyncStarter wraps it in a worker goroutine.
type Runner interface {
	Run(kind logic.ActionKind) logic.OperationResult
}

// AsyncStarter satisfies logic.JobStarter by running jobs on a worker
// goroutine and delivering results on a channel the control loop drains.
// Only one job per action kind runs at a time (the confirmation window's
// Executing state guarantees the dispatcher never double-starts).
type AsyncStarter struct {
	Runner  Runner
	Results chan<- logic.OperationResult
}

// Start launches the job for the given kind.
func (a *AsyncStarter) Start(kind logic.ActionKind) {
	go func() {
		a.Results <- a.Runner.Run(kind)
	}()
}

package ops

import (
	"bufio"
	"fmt"
	"os/exec"

	"github.com/google/shlex"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

// ExecRunner runs update jobs by executing configured commands, e.g.
// "sudo pihole -g". Stdout lines are streamed to the reporter so the
// control pane shows job progress live.
type ExecRunner struct {
	GravityCmd string
	SystemCmd  string
	Reporter   logic.Reporter
}

// Run executes the command for the given kind and maps its exit status
// to an OperationResult. Unknown kinds fail without executing anything.
func (r *ExecRunner) Run(kind logic.ActionKind) logic.OperationResult {
	var cmdline string
	switch kind {
	case logic.ActionGravity:
		cmdline = r.GravityCmd
	case logic.ActionSystem:
		cmdline = r.SystemCmd
	default:
		return logic.OperationResult{Kind: kind, Detail: fmt.Sprintf("no command for action %q", kind)}
	}

	cmd, err := buildCommand(cmdline)
	if err != nil {
		return logic.OperationResult{Kind: kind, Detail: err.Error()}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return logic.OperationResult{Kind: kind, Detail: fmt.Sprintf("stdout pipe: %v", err)}
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return logic.OperationResult{Kind: kind, Detail: fmt.Sprintf("start %q: %v", cmdline, err)}
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if r.Reporter != nil {
			r.Reporter.Progress(kind, logic.PhaseOutput, scanner.Text())
		}
	}

	if err := cmd.Wait(); err != nil {
		return logic.OperationResult{Kind: kind, Detail: err.Error()}
	}
	return logic.OperationResult{Kind: kind, OK: true, Detail: "completed"}
}

// ExecPower requests power transitions by executing configured commands.
// Requests are fire-and-forget: the process terminates shortly after.
type ExecPower struct {
	RebootCmd   string
	ShutdownCmd string
}

// Reboot executes the configured reboot command.
func (p *ExecPower) Reboot() error {
	return runCommand(p.RebootCmd)
}

// Shutdown executes the configured shutdown command.
func (p *ExecPower) Shutdown() error {
	return runCommand(p.ShutdownCmd)
}

func runCommand(cmdline string) error {
	cmd, err := buildCommand(cmdline)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %q: %w", cmdline, err)
	}
	return nil
}

// buildCommand splits a shell-style command string into an exec.Cmd.
// Splitting with shlex keeps quoted arguments intact without ever
// invoking a shell.
func buildCommand(cmdline string) (*exec.Cmd, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", cmdline, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return exec.Command(args[0], args[1:]...), nil
}

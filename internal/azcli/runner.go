package azcli

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/imamik/azdemo/internal/console"
	"github.com/imamik/azdemo/internal/execlock"
)

// debugFlag is the az CLI flag that turns on verbose diagnostics.
const debugFlag = "--debug"

// ExecOptions tunes a single invocation.
type ExecOptions struct {
	// InjectDebug inserts the az debug flag into az commands that do not
	// already carry one. It has no effect on non-az commands.
	InjectDebug bool

	// SuppressErrorLog skips the one-line error report on failure. Used by
	// probes whose failure is an expected, handled outcome.
	SuppressErrorLog bool
}

// Executor runs a command line and classifies the outcome. Satisfied by
// Runner; tests substitute scripted fakes.
type Executor interface {
	Execute(ctx context.Context, commandLine string, opts ExecOptions) Result
}

// Runner executes command lines through the shell, serializing az
// invocations behind the shared advisory lock.
type Runner struct {
	sink *console.Sink
	lock *execlock.Lock

	// shell is the interpreter used to run command lines; command lines may
	// contain pipes and redirects by contract.
	shell string
}

// NewRunner creates a runner. The lock is shared with every other component
// that spawns az, never created per-runner.
func NewRunner(sink *console.Sink, lock *execlock.Lock) *Runner {
	return &Runner{sink: sink, lock: lock, shell: "/bin/sh"}
}

var debugFlagPattern = regexp.MustCompile(`(^|\s)--debug(\s|$)`)

// IsAzCommand reports whether the command line invokes the az CLI, after
// normalizing leading whitespace.
func IsAzCommand(commandLine string) bool {
	trimmed := strings.TrimLeft(commandLine, " \t")
	return trimmed == "az" || strings.HasPrefix(trimmed, "az ")
}

// InjectDebugFlag inserts the az debug flag into an az command line that does
// not already carry it. The flag lands immediately before the first pipe or
// redirect so it applies to the az process rather than a downstream command;
// with no pipe or redirect it is appended. Non-az command lines are returned
// unchanged.
func InjectDebugFlag(commandLine string) string {
	if !IsAzCommand(commandLine) {
		return commandLine
	}
	if debugFlagPattern.MatchString(commandLine) {
		return commandLine
	}

	if i := firstShellOperator(commandLine); i >= 0 {
		return strings.TrimRight(commandLine[:i], " ") + " " + debugFlag + " " + commandLine[i:]
	}
	return commandLine + " " + debugFlag
}

// firstShellOperator returns the index of the first pipe or redirect
// character outside of quotes, or -1.
func firstShellOperator(commandLine string) int {
	var inSingle, inDouble bool
	for i := 0; i < len(commandLine); i++ {
		switch commandLine[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '|', '>':
			if !inSingle && !inDouble {
				return i
			}
		}
	}
	return -1
}

// Execute runs the command line and returns its classified Result. Failures
// of any kind — non-zero exit, spawn error, IO error — come back as a failed
// Result, never as a panic or error.
func (r *Runner) Execute(ctx context.Context, commandLine string, opts ExecOptions) Result {
	isAz := IsAzCommand(commandLine)
	if opts.InjectDebug && isAz {
		commandLine = InjectDebugFlag(commandLine)
	}

	r.sink.Debugf("exec: %s", Redact(commandLine))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.shell, "-c", commandLine)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := r.runLocked(ctx, cmd, isAz)

	if runErr != nil {
		res := fail(combinedText(&stdout, &stderr, runErr))
		r.reportFailure(commandLine, res, opts)
		return res
	}
	return succeed(stdout.String())
}

// runLocked spawns the process, holding the shared az lock across the whole
// process lifetime for az commands. Non-az commands run unserialized.
func (r *Runner) runLocked(ctx context.Context, cmd *exec.Cmd, isAz bool) error {
	if isAz {
		release, err := r.lock.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
	}
	return cmd.Run()
}

// combinedText merges stdout and stderr for failure diagnosis, falling back
// to the spawn/lock error text when the process produced no output at all.
func combinedText(stdout, stderr *bytes.Buffer, runErr error) string {
	text := stdout.String() + stderr.String()
	if strings.TrimSpace(text) == "" {
		return runErr.Error()
	}
	return text
}

// reportFailure emits the one-line extracted error, redacted, plus a hint to
// enable debug logging when it is off.
func (r *Runner) reportFailure(commandLine string, res Result, opts ExecOptions) {
	if opts.SuppressErrorLog {
		return
	}
	msg := ExtractErrorMessage(res.Text)
	if msg == "" {
		msg = "command failed"
	}
	r.sink.Errorf("%s", Redact(msg))
	r.sink.Debugf("failed command: %s", Redact(commandLine))
	if !r.sink.Verbose() {
		r.sink.Errorf("re-run with AZDEMO_LOG_LEVEL=debug for the full command output")
	}
}

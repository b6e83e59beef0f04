package execshell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// OSCommandRunner executes GitHub CLI commands through os/exec. The process
// inherits the parent environment and working directory unchanged; the CLI
// resolves authentication and hosts on its own.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command, piping any configured payload to the
// process on stdin. A non-zero exit is reported through ExitCode rather than
// as an error; only a process that could not run at all returns one.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}

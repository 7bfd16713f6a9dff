package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/cocogitto-go/cocogitto/internal/corelog"
	"github.com/cocogitto-go/cocogitto/internal/tag"
)

// FailedError reports a hook that exited non-zero, carrying the command so
// callers (the orchestrator) can drive stash-on-failure with a useful
// message.
type FailedError struct {
	Command string
	Err     error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("hook %q failed: %v", e.Command, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Run parses, substitutes and executes each command in order, in dir,
// inheriting stdio. It stops and returns a *FailedError at the first
// non-zero exit, per §4.7 and §4.8 step 7.
func Run(ctx context.Context, commands []string, dir string, current, next tag.Tag) error {
	for _, command := range commands {
		h, err := Parse(command)
		if err != nil {
			return fmt.Errorf("parsing hook %q: %w", command, err)
		}
		args, err := h.Render(current, next)
		if err != nil {
			return fmt.Errorf("substituting hook %q: %w", command, err)
		}
		if len(args) == 0 {
			return fmt.Errorf("hook %q produced no command", command)
		}

		corelog.Log.Infof("running hook: %s", command)
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = dir
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return &FailedError{Command: command, Err: err}
		}
	}
	return nil
}

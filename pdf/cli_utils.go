package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// execCommandWithTimeout executes a command, killing it once timeout elapses
// or ctx is done.
func execCommandWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("command %s timed out after %v", name, timeout)
	}
	if ctx.Err() != nil {
		return output, fmt.Errorf("command %s canceled: %w", name, ctx.Err())
	}

	if err != nil {
		return output, fmt.Errorf("command %s failed: %w", name, err)
	}

	return output, nil
}

// lookupCommand verifies that name resolves to an executable in PATH.
func lookupCommand(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("command %s not found or not executable: %w", name, err)
	}
	return nil
}

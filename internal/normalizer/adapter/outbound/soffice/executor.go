package soffice

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process
// was killed by its context.
const waitDelay = 5 * time.Second

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Exists(path string) bool
	// Run executes name and reports its exit code. started is false when the
	// process could not be launched.
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (exitCode int, started bool, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (int, bool, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return -1, false, err
	}

	err := cmd.Wait()
	if err == nil {
		return 0, true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true, err
	}
	return -1, true, err
}

//go:build !unix

package launch

import (
	"os"
	"os/exec"
	"os/signal"
)

// Exec approximates process replacement on platforms without execve: the
// application runs as a child with inherited stdio, interrupt signals are
// forwarded, and this process exits with the child's status. On success
// control never returns to the caller.
func (h *Handoff) Exec() error {
	cmd := exec.Command(h.Bin, h.Args...)
	cmd.Dir = h.Dir
	cmd.Env = h.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return &ExecutionError{Entry: h.entry(), Err: err}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		for sig := range sigCh {
			_ = cmd.Process.Signal(sig)
		}
	}()

	err := cmd.Wait()
	signal.Stop(sigCh)
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			os.Exit(ee.ExitCode())
		}
		return &ExecutionError{Entry: h.entry(), Err: err}
	}
	os.Exit(0)
	return nil
}

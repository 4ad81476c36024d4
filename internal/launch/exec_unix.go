//go:build unix

package launch

import (
	"os"
	"syscall"
)

// Exec replaces the current process image with the handed-off application. On
// success control never returns; stdio and the environment carry over, and the
// application's exit status becomes the process exit status.
func (h *Handoff) Exec() error {
	if h.Dir != "" {
		if err := os.Chdir(h.Dir); err != nil {
			return &ExecutionError{Entry: h.entry(), Err: err}
		}
	}
	argv := append([]string{h.Bin}, h.Args...)
	if err := syscall.Exec(h.Bin, argv, h.Env); err != nil {
		return &ExecutionError{Entry: h.entry(), Err: err}
	}
	return nil
}

// Package procctl wraps the process primitives the runner drives:
// reading the current process id, signaling another process, and
// terminating this one.
package procctl

import (
	"fmt"
	"os"
	"syscall"
)

// Status is a process exit status. Values follow sysexits conventions.
type Status int

// Exit statuses used by the runner.
const (
	StatusOK    Status = 0  // success
	StatusUsage Status = 64 // invalid invocation (EX_USAGE)
)

// Terminate is the signal sent to request graceful shutdown of another
// process.
var Terminate os.Signal = syscall.SIGTERM

// Control exposes process primitives behind an interface so code that
// terminates or signals processes can be exercised in tests. Production
// code uses System; tests substitute a Recorder, whose Exit returns to
// the caller instead of stopping the test binary.
type Control interface {
	// PID returns the current process id.
	PID() int

	// Signal delivers sig to the process identified by pid.
	Signal(pid int, sig os.Signal) error

	// Exit terminates the calling process with the given status,
	// printing message to standard error first when non-empty. It does
	// not return.
	Exit(status Status, message string)
}

// System is the production Control backed by the operating system.
type System struct{}

// PID returns os.Getpid.
func (System) PID() int { return os.Getpid() }

// Signal delivers sig to the process identified by pid.
func (System) Signal(pid int, sig os.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

// Exit terminates the process. It never returns.
func (System) Exit(status Status, message string) {
	if message != "" {
		fmt.Fprintln(os.Stderr, message)
	}
	os.Exit(int(status))
}

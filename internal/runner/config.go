package runner

import (
	"github.com/smazurov/procrun/internal/pidfile"
	"github.com/smazurov/procrun/internal/reactor"
)

// Config holds the lifecycle options for one run. It is built once
// before Run and treated as read-only afterwards: the same *Config is
// handed to every lifecycle callback so hooks can correlate calls to a
// single run.
type Config struct {
	// Kill requests termination of a prior instance recorded in PIDFile
	// instead of starting. Requires PIDFile; exits with a usage error
	// otherwise.
	Kill bool

	// PIDFile, when set, is written at startup with this process's id
	// and removed at shutdown. On the kill path it is read to find the
	// target pid.
	PIDFile *pidfile.File

	// Reactor is the event loop to drive. Nil means the process-wide
	// default.
	Reactor reactor.Reactor

	// WhenRunning is invoked once the event loop reports itself active.
	WhenRunning func(*Config)

	// ReactorExited is invoked after the event loop has stopped.
	ReactorExited func(*Config)
}

// Package reactor defines the event loop the runner suspends on, plus
// the signal-driven production implementation and an in-memory one for
// tests.
package reactor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Reactor is the event loop collaborator. Run blocks the calling
// goroutine until the loop is stopped, either by an operating system
// termination signal or a Stop call.
type Reactor interface {
	// Install performs one-time setup. Installing an already installed
	// reactor is a no-op.
	Install() error

	// IsInstalled reports whether Install has run.
	IsInstalled() bool

	// Run fires the when-running callbacks, blocks until the loop is
	// stopped, then fires the after-stop callbacks.
	Run()

	// Stop requests that Run return. Safe to call repeatedly and from
	// any goroutine.
	Stop()

	// RunWhenRunning registers f to run once the loop reports itself
	// active. Registration after Run has started is not supported.
	RunWhenRunning(f func())

	// RunAfterStop registers f to run after the loop has stopped.
	RunAfterStop(f func())
}

// Signals is the production Reactor. Install registers for SIGINT and
// SIGTERM; Run blocks until one arrives or Stop is called.
type Signals struct {
	mu          sync.Mutex
	installed   bool
	whenRunning []func()
	afterStop   []func()

	sigs     chan os.Signal
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSignals returns an uninstalled signal-driven reactor.
func NewSignals() *Signals {
	return &Signals{
		sigs: make(chan os.Signal, 1),
		stop: make(chan struct{}),
	}
}

// Install registers the termination signal notifications. Idempotent.
func (r *Signals) Install() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.installed {
		return nil
	}
	signal.Notify(r.sigs, syscall.SIGINT, syscall.SIGTERM)
	r.installed = true
	return nil
}

// IsInstalled reports whether Install has run.
func (r *Signals) IsInstalled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installed
}

// RunWhenRunning registers a callback for when the loop becomes active.
func (r *Signals) RunWhenRunning(f func()) {
	r.mu.Lock()
	r.whenRunning = append(r.whenRunning, f)
	r.mu.Unlock()
}

// RunAfterStop registers a callback for after the loop has stopped.
func (r *Signals) RunAfterStop(f func()) {
	r.mu.Lock()
	r.afterStop = append(r.afterStop, f)
	r.mu.Unlock()
}

// Run fires the when-running callbacks, blocks until a termination
// signal arrives or Stop is called, then fires the after-stop
// callbacks.
func (r *Signals) Run() {
	for _, f := range r.snapshot(&r.whenRunning) {
		f()
	}

	select {
	case <-r.sigs:
	case <-r.stop:
	}
	signal.Stop(r.sigs)

	for _, f := range r.snapshot(&r.afterStop) {
		f()
	}
}

// Stop unblocks Run. Idempotent.
func (r *Signals) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Signals) snapshot(callbacks *[]func()) []func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]func(), len(*callbacks))
	copy(out, *callbacks)
	return out
}

package reactor

import "sync"

var (
	defaultMu      sync.Mutex
	defaultReactor Reactor
)

// Default returns the process-wide reactor, lazily creating a
// signal-driven one on first use.
func Default() Reactor {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReactor == nil {
		defaultReactor = NewSignals()
	}
	return defaultReactor
}

// SetDefault replaces the process-wide reactor. Passing nil resets it so
// the next Default call creates a fresh one. This is the substitution
// point for tests and for embedders that bring their own loop.
func SetDefault(r Reactor) {
	defaultMu.Lock()
	defaultReactor = r
	defaultMu.Unlock()
}

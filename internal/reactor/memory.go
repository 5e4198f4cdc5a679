package reactor

// Memory is an in-memory Reactor that records what was done to it. Run
// fires every registered callback and returns immediately. It exists so
// code that drives a reactor can be tested without installing signal
// handlers or blocking.
type Memory struct {
	HasInstalled bool
	HasRun       bool

	whenRunning []func()
	afterStop   []func()
}

// NewMemory returns a fresh recording reactor.
func NewMemory() *Memory { return &Memory{} }

// Install records that setup happened.
func (r *Memory) Install() error {
	r.HasInstalled = true
	return nil
}

// IsInstalled reports whether Install was called.
func (r *Memory) IsInstalled() bool { return r.HasInstalled }

// RunWhenRunning registers a callback fired at the start of Run.
func (r *Memory) RunWhenRunning(f func()) {
	r.whenRunning = append(r.whenRunning, f)
}

// RunAfterStop registers a callback fired at the end of Run.
func (r *Memory) RunAfterStop(f func()) {
	r.afterStop = append(r.afterStop, f)
}

// Run records that the loop ran and fires all callbacks synchronously.
func (r *Memory) Run() {
	r.HasRun = true
	for _, f := range r.whenRunning {
		f()
	}
	for _, f := range r.afterStop {
		f()
	}
}

// Stop is a no-op: Run never blocks.
func (r *Memory) Stop() {}

package procctl

import "os"

// SignalCall records one Signal invocation.
type SignalCall struct {
	PID int
	Sig os.Signal
}

// Recorder is a Control for tests. It records every call and returns
// control to the caller, so process-terminating code paths can be
// asserted on instead of actually stopping the test binary.
type Recorder struct {
	// CurrentPID is what PID reports.
	CurrentPID int

	// SignalErr, when set, is returned from Signal after recording.
	SignalErr error

	Signals []SignalCall
	Exited  bool
	Status  Status
	Message string
}

// PID reports the configured pid.
func (r *Recorder) PID() int { return r.CurrentPID }

// Signal records the call.
func (r *Recorder) Signal(pid int, sig os.Signal) error {
	r.Signals = append(r.Signals, SignalCall{PID: pid, Sig: sig})
	return r.SignalErr
}

// Exit records the call and returns.
func (r *Recorder) Exit(status Status, message string) {
	r.Exited = true
	r.Status = status
	r.Message = message
}

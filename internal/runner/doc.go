// Package runner sequences the lifecycle of a long-running process:
// kill a prior instance when asked, write the PID file, start logging,
// drive the event loop until it exits, and clean up. Steps always run
// in that order; the first failure aborts the sequence.
//
// Process-level effects go through a procctl.Control and the event loop
// through a reactor.Reactor, both injectable, so the whole sequence is
// testable with recording doubles.
package runner

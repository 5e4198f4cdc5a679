package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeStep uint32 = iota + 1
	TypeKillRequested
	TypeReactorRunning
	TypeReactorStopped
	TypeChildExited
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StepEvent is published when the runner enters a lifecycle step.
type StepEvent struct {
	Step      string    `json:"step" example:"writePIDFile" doc:"Lifecycle step name"`
	Timestamp time.Time `json:"timestamp" doc:"When the step was entered"`
}

// Type returns the event type identifier for StepEvent.
func (e StepEvent) Type() uint32 { return TypeStep }

// KillRequestedEvent is published right before the runner signals a
// prior instance recorded in the pid file.
type KillRequestedEvent struct {
	PID       int       `json:"pid" example:"1337" doc:"Process id being signaled"`
	Timestamp time.Time `json:"timestamp" doc:"When the signal was sent"`
}

// Type returns the event type identifier for KillRequestedEvent.
func (e KillRequestedEvent) Type() uint32 { return TypeKillRequested }

// ReactorRunningEvent marks the reactor reporting itself active.
type ReactorRunningEvent struct {
	Timestamp time.Time `json:"timestamp" doc:"When the reactor became active"`
}

// Type returns the event type identifier for ReactorRunningEvent.
func (e ReactorRunningEvent) Type() uint32 { return TypeReactorRunning }

// ReactorStoppedEvent marks the reactor having returned from its run.
type ReactorStoppedEvent struct {
	Uptime    time.Duration `json:"uptime" doc:"How long the reactor was active"`
	Timestamp time.Time     `json:"timestamp" doc:"When the reactor stopped"`
}

// Type returns the event type identifier for ReactorStoppedEvent.
func (e ReactorStoppedEvent) Type() uint32 { return TypeReactorStopped }

// ChildExitedEvent is published when the supervised command exits.
type ChildExitedEvent struct {
	ExitCode  int       `json:"exit_code" example:"0" doc:"Exit code of the child process"`
	Timestamp time.Time `json:"timestamp" doc:"When the child exited"`
}

// Type returns the event type identifier for ChildExitedEvent.
func (e ChildExitedEvent) Type() uint32 { return TypeChildExited }

// LogEntryEvent carries one structured log entry to bus observers.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2026-08-28T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"runner" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

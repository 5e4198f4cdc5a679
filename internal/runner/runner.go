package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/procrun/internal/events"
	"github.com/smazurov/procrun/internal/logging"
	"github.com/smazurov/procrun/internal/procctl"
	"github.com/smazurov/procrun/internal/reactor"
)

// Step names as logged and published while the lifecycle advances.
const (
	StepKillIfRequested = "killIfRequested"
	StepWritePIDFile    = "writePIDFile"
	StepStartLogging    = "startLogging"
	StepStartReactor    = "startReactor"
	StepReactorExited   = "reactorExited"
	StepRemovePIDFile   = "removePIDFile"
)

// ErrExited is returned when a step asked the Control to terminate the
// process but the call returned. procctl.System never returns from
// Exit, so this only surfaces with recording controls.
var ErrExited = errors.New("process exit requested")

// Runner drives a process through its lifecycle steps in a fixed
// order.
type Runner struct {
	cfg          *Config
	control      procctl.Control
	beginLogging func() error
	bus          *events.Bus
	log          *slog.Logger
}

// Options configures a Runner. Zero-value fields get production
// defaults.
type Options struct {
	// Config is the lifecycle configuration. Nil means an empty run
	// that just drives the default reactor.
	Config *Config

	// Control performs process-level operations. Defaults to
	// procctl.System.
	Control procctl.Control

	// BeginLogging switches the process to its runtime logging
	// destinations. Defaults to logging.Begin.
	BeginLogging func() error

	// Bus, when set, receives lifecycle events.
	Bus *events.Bus

	// Logger overrides the runner's module logger.
	Logger *slog.Logger
}

// New creates a Runner, filling in production defaults for any options
// left unset.
func New(opts *Options) *Runner {
	if opts == nil {
		opts = &Options{}
	}
	r := &Runner{
		cfg:          opts.Config,
		control:      opts.Control,
		beginLogging: opts.BeginLogging,
		bus:          opts.Bus,
		log:          opts.Logger,
	}
	if r.cfg == nil {
		r.cfg = &Config{}
	}
	if r.control == nil {
		r.control = procctl.System{}
	}
	if r.beginLogging == nil {
		r.beginLogging = logging.Begin
	}
	if r.log == nil {
		r.log = logging.GetLogger("runner")
	}
	return r
}

// Run executes the lifecycle in order: kill a prior instance if
// requested, write the PID file, start logging, run the event loop
// until it stops, fire the exit hook, and remove the PID file. The
// first failing step aborts the sequence and its error is returned.
func (r *Runner) Run() error {
	if err := r.killIfRequested(); err != nil {
		return err
	}
	if err := r.writePIDFile(); err != nil {
		return err
	}
	if err := r.startLogging(); err != nil {
		return err
	}
	if err := r.startReactor(); err != nil {
		return err
	}
	r.reactorExited()
	return r.removePIDFile()
}

func (r *Runner) enterStep(name string) {
	r.log.Debug("Entering lifecycle step", "step", name)
	if r.bus != nil {
		r.bus.Publish(events.StepEvent{Step: name, Timestamp: time.Now()})
	}
}

// killIfRequested terminates a previously recorded instance when the
// configuration asks for it. The target pid comes from the PID file;
// nothing is ever signaled on a read or parse failure.
func (r *Runner) killIfRequested() error {
	r.enterStep(StepKillIfRequested)
	if !r.cfg.Kill {
		return nil
	}
	if r.cfg.PIDFile == nil {
		r.control.Exit(procctl.StatusUsage, "No PID file specified")
		return ErrExited
	}
	pid, err := r.cfg.PIDFile.Read()
	if err != nil {
		return fmt.Errorf("reading pid file: %w", err)
	}
	r.log.Info("Terminating previous instance", "pid", pid)
	if r.bus != nil {
		r.bus.Publish(events.KillRequestedEvent{PID: pid, Timestamp: time.Now()})
	}
	if err := r.control.Signal(pid, procctl.Terminate); err != nil {
		return fmt.Errorf("signaling pid %d: %w", pid, err)
	}
	r.control.Exit(procctl.StatusOK, "")
	return ErrExited
}

func (r *Runner) writePIDFile() error {
	r.enterStep(StepWritePIDFile)
	if r.cfg.PIDFile == nil {
		return nil
	}
	pid := r.control.PID()
	if err := r.cfg.PIDFile.Write(pid); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	r.log.Info("Wrote PID file", "path", r.cfg.PIDFile.Path(), "pid", pid)
	return nil
}

func (r *Runner) startLogging() error {
	r.enterStep(StepStartLogging)
	if err := r.beginLogging(); err != nil {
		return fmt.Errorf("starting logging: %w", err)
	}
	return nil
}

// startReactor installs the configured event loop, or the process-wide
// default when none is set, and blocks in it until it stops.
func (r *Runner) startReactor() error {
	r.enterStep(StepStartReactor)
	re := r.cfg.Reactor
	if re == nil {
		re = reactor.Default()
	}
	if err := re.Install(); err != nil {
		return fmt.Errorf("installing reactor: %w", err)
	}
	started := time.Now()
	re.RunWhenRunning(func() {
		r.log.Info("Reactor running")
		if r.bus != nil {
			r.bus.Publish(events.ReactorRunningEvent{Timestamp: time.Now()})
		}
		if r.cfg.WhenRunning != nil {
			r.cfg.WhenRunning(r.cfg)
		}
	})
	re.Run()
	if r.bus != nil {
		r.bus.Publish(events.ReactorStoppedEvent{Uptime: time.Since(started), Timestamp: time.Now()})
	}
	return nil
}

func (r *Runner) reactorExited() {
	r.enterStep(StepReactorExited)
	if r.cfg.ReactorExited != nil {
		r.cfg.ReactorExited(r.cfg)
	}
}

func (r *Runner) removePIDFile() error {
	r.enterStep(StepRemovePIDFile)
	if r.cfg.PIDFile == nil {
		return nil
	}
	if err := r.cfg.PIDFile.Remove(); err != nil {
		return fmt.Errorf("removing pid file: %w", err)
	}
	r.log.Info("Removed PID file", "path", r.cfg.PIDFile.Path())
	return nil
}

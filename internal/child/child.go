// Package child runs the single supervised command for the daemon. The
// command is started once the reactor is active and runs exactly once:
// a crashed child is reported, never restarted. Restart policy belongs
// to an external supervisor.
package child

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/procrun/internal/events"
)

// killedExitCode is reported when the child had to be force killed
// (128 + SIGKILL).
const killedExitCode = 137

// Command manages one subprocess: start, stream output into the logger,
// graceful stop with SIGINT, force kill after a timeout.
type Command struct {
	command string
	logger  *slog.Logger
	bus     *events.Bus

	cmd    *exec.Cmd
	cmdMu  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	gracefulTimeout time.Duration
	killTimeout     time.Duration
}

// Options configures a Command. Zero values get defaults.
type Options struct {
	// Bus, when set, receives a ChildExitedEvent when the command exits.
	Bus *events.Bus

	// GracefulTimeout is how long to wait after SIGINT before SIGKILL.
	// Default 5s.
	GracefulTimeout time.Duration

	// KillTimeout is how long to wait after SIGKILL before giving up.
	// Default 5s.
	KillTimeout time.Duration
}

// New creates a Command for the given shell-style command line.
func New(command string, logger *slog.Logger, opts *Options) *Command {
	if opts == nil {
		opts = &Options{}
	}
	gracefulTimeout := opts.GracefulTimeout
	if gracefulTimeout == 0 {
		gracefulTimeout = 5 * time.Second
	}
	killTimeout := opts.KillTimeout
	if killTimeout == 0 {
		killTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Command{
		command:         command,
		logger:          logger,
		bus:             opts.Bus,
		ctx:             ctx,
		cancel:          cancel,
		gracefulTimeout: gracefulTimeout,
		killTimeout:     killTimeout,
	}
}

// Stop requests a graceful shutdown of the child.
func (c *Command) Stop() {
	c.cancel()
}

// Run starts the child and blocks until it exits or Stop is called.
// Returns the child's exit code. The ChildExitedEvent is published in
// both cases.
func (c *Command) Run() int {
	code := c.run()
	if c.bus != nil {
		c.bus.Publish(events.ChildExitedEvent{ExitCode: code, Timestamp: time.Now()})
	}
	return code
}

func (c *Command) run() int {
	args, err := splitCommand(c.command)
	if err != nil {
		c.logger.Error("Failed to parse command", "error", err)
		return 1
	}
	if len(args) == 0 {
		c.logger.Error("Empty command")
		return 1
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.logger.Error("Failed to create stdout pipe", "error", err)
		return 1
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		c.logger.Error("Failed to create stderr pipe", "error", err)
		return 1
	}

	if err := cmd.Start(); err != nil {
		c.logger.Error("Failed to start command", "error", err, "command", c.command)
		return 1
	}

	c.cmdMu.Lock()
	c.cmd = cmd
	c.cmdMu.Unlock()

	c.logger.Info("Command started", "pid", cmd.Process.Pid, "command", c.command)

	outputDone := make(chan struct{}, 2)
	go func() {
		c.streamOutput(stdout, "stdout")
		outputDone <- struct{}{}
	}()
	go func() {
		c.streamOutput(stderr, "stderr")
		outputDone <- struct{}{}
	}()
	defer func() {
		<-outputDone
		<-outputDone
	}()

	processDone := make(chan error, 1)
	go func() {
		processDone <- cmd.Wait()
	}()

	select {
	case <-c.ctx.Done():
		c.logger.Info("Stop requested, shutting down command")
		c.signalInterrupt()
		return c.waitForExit(processDone)
	case processErr := <-processDone:
		code := exitCodeFromError(processErr)
		c.logger.Info("Command exited", "exit_code", code)
		return code
	}
}

// signalInterrupt sends SIGINT to the child without waiting.
func (c *Command) signalInterrupt() {
	c.cmdMu.Lock()
	cmd := c.cmd
	c.cmdMu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	c.logger.Info("Sending SIGINT to command", "pid", cmd.Process.Pid)
	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		c.logger.Warn("Failed to send SIGINT", "error", err)
	}
}

// waitForExit waits for the child with the graceful timeout, force
// killing if it does not oblige.
func (c *Command) waitForExit(processDone <-chan error) int {
	select {
	case err := <-processDone:
		return exitCodeFromError(err)
	case <-time.After(c.gracefulTimeout):
	}

	c.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", c.gracefulTimeout)

	c.cmdMu.Lock()
	cmd := c.cmd
	c.cmdMu.Unlock()

	if cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			c.logger.Error("Failed to kill command", "error", err)
		}
	}

	select {
	case <-processDone:
	case <-time.After(c.killTimeout):
		c.logger.Error("Command did not exit after kill signal")
	}
	return killedExitCode
}

// streamOutput logs each output line from the child. The child's stderr
// maps to warn level, stdout to info.
func (c *Command) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)
	logger := c.logger.With("source", source)

	for scanner.Scan() {
		line := scanner.Text()
		if source == "stderr" {
			logger.Warn(line)
		} else {
			logger.Info(line)
		}
	}

	if err := scanner.Err(); err != nil {
		c.logger.Warn("Error reading command output", "source", source, "error", err)
	}
}

// exitCodeFromError extracts the exit code from cmd.Wait's error.
// Returns 0 for nil, the code for ExitError, and 1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// splitCommand parses a command string into arguments, handling quoted
// strings and backslash escapes.
func splitCommand(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	runes := []rune(strings.TrimSpace(command))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
			case r == quoteChar:
				inQuote = false
				quoteChar = 0
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case r == '\\' && i+1 < len(runes):
			i++
			current.WriteRune(runes[i])
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	if inQuote {
		return nil, fmt.Errorf("unclosed quote in command")
	}
	return args, nil
}

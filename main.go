package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/procrun/cmd"
	"github.com/smazurov/procrun/internal/child"
	"github.com/smazurov/procrun/internal/config"
	"github.com/smazurov/procrun/internal/events"
	"github.com/smazurov/procrun/internal/logging"
	"github.com/smazurov/procrun/internal/metrics"
	"github.com/smazurov/procrun/internal/pidfile"
	"github.com/smazurov/procrun/internal/reactor"
	"github.com/smazurov/procrun/internal/runner"
	"github.com/smazurov/procrun/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"procrun.toml"`

	// Runner settings
	PidFile string `help:"Path to the PID file" default:"" toml:"pid_file" env:"PID_FILE"`
	Kill    bool   `help:"Terminate the instance recorded in the PID file and exit" default:"false"`

	// Child process settings
	Command           string `help:"Command line to supervise" default:"" toml:"child.command" env:"CHILD_COMMAND"`
	GracefulTimeoutMs int    `help:"Milliseconds to wait after SIGINT before SIGKILL" default:"5000" toml:"child.graceful_timeout_ms" env:"CHILD_GRACEFUL_TIMEOUT_MS"`

	// Metrics settings
	MetricsAddr string `help:"Address for the Prometheus metrics endpoint (empty disables it)" default:"" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Systemd settings
	NotifySystemd bool `help:"Send readiness notifications to systemd" default:"true" toml:"systemd.notify" env:"SYSTEMD_NOTIFY"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingRunner  string `help:"Runner logging level" default:"info" toml:"logging.runner" env:"LOGGING_RUNNER"`
	LoggingReactor string `help:"Reactor logging level" default:"info" toml:"logging.reactor" env:"LOGGING_REACTOR"`
	LoggingChild   string `help:"Child process logging level" default:"info" toml:"logging.child" env:"LOGGING_CHILD"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.Load(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"runner":  opts.LoggingRunner,
				"reactor": opts.LoggingReactor,
				"child":   opts.LoggingChild,
			},
		})

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Bridge log entries onto the bus for observers
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// Lifecycle metrics, exposed over HTTP when an address is set
		lifecycle := metrics.NewLifecycle()
		lifecycle.Observe(eventBus)

		var metricsServer *http.Server
		if opts.MetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", lifecycle.Handler())
			metricsServer = &http.Server{
				Addr:              opts.MetricsAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
		}

		// Hot-reload logging levels on config file changes
		var watcher *config.Watcher[logging.Config]
		if opts.Config != "" {
			loader := func(path string) (logging.Config, error) {
				return config.LoadLoggingConfig(path), nil
			}
			watcher = config.NewWatcher(opts.Config, loader, logger,
				config.WithDebounce[logging.Config](1500*time.Millisecond))
			watcher.OnReload(func(cfg logging.Config) {
				logger.Info("Reloading logging configuration")
				logging.Apply(cfg)
			})
			if err := watcher.Start(); err != nil {
				logger.Warn("Config watcher disabled", "error", err)
				watcher = nil
			}
		}

		var pf *pidfile.File
		if opts.PidFile != "" {
			pf = pidfile.New(opts.PidFile)
		}

		var childCmd *child.Command
		childDone := make(chan struct{})

		runCfg := &runner.Config{
			Kill:    opts.Kill,
			PIDFile: pf,
		}
		runCfg.WhenRunning = func(*runner.Config) {
			if opts.NotifySystemd {
				if _, err := systemd.NotifyReady(); err != nil {
					logger.Debug("systemd notification failed", "error", err)
				}
			}

			if metricsServer != nil {
				go func() {
					logger.Info("Starting metrics server", "addr", metricsServer.Addr)
					if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("Metrics server failed", "error", err)
					}
				}()
			}

			if opts.Command != "" {
				childCmd = child.New(opts.Command, logging.GetLogger("child"), &child.Options{
					Bus:             eventBus,
					GracefulTimeout: time.Duration(opts.GracefulTimeoutMs) * time.Millisecond,
				})
				go func() {
					defer close(childDone)
					code := childCmd.Run()
					logger.Info("Child process exited", "exit_code", code)
					reactor.Default().Stop()
				}()
			} else {
				close(childDone)
			}
		}
		runCfg.ReactorExited = func(*runner.Config) {
			if childCmd != nil {
				childCmd.Stop()
				<-childDone
			}
			if opts.NotifySystemd {
				_, _ = systemd.NotifyStopping()
			}
			if metricsServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(ctx)
			}
			if watcher != nil {
				_ = watcher.Stop()
			}
			lifecycle.Close()
		}

		r := runner.New(&runner.Options{
			Config: runCfg,
			Bus:    eventBus,
		})

		hooks.OnStart(func() {
			if err := r.Run(); err != nil {
				logger.Error("Runner failed", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			reactor.Default().Stop()
		})
	})

	// Add status command
	statusCmd := cmd.CreateStatusCmd()
	cli.Root().AddCommand(statusCmd)

	// Add version command
	versionCmd := cmd.CreateVersionCmd()
	cli.Root().AddCommand(versionCmd)

	// Run the CLI
	cli.Run()
}

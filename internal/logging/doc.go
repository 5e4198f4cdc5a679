// Package logging provides the structured logging sink for procrun.
//
// Loggers are handed out per module via [GetLogger]; each module has its
// own [log/slog.LevelVar] so levels can be changed at runtime, globally
// through [Initialize] or selectively through [Apply] after a config
// reload.
//
// Every logger fans out through a handler chain:
//   - stdout in text or json format, when stdout is usable
//   - the systemd journal, when running under systemd
//   - a ring buffer of recent entries, with an optional callback for
//     republishing entries on the event bus
//
// Journal availability is checked via
// [github.com/coreos/go-systemd/v22/journal.Enabled].
//
// [Begin] additionally redirects the process standard error stream into
// the sink, so stray writes to fd 2 surface as error-level entries.
package logging

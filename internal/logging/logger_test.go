package logging

import (
	"context"
	"log/slog"
	"testing"
)

// resetState clears package-level logger state between tests.
func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	logBuffer = nil
	logCallback = nil
	isInitialized = false
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"runner": "debug",
			"child":  "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"runner", true, true, true},
		{"child", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			gotDebug := handler.Enabled(context.Background(), slog.LevelDebug)
			gotInfo := handler.Enabled(context.Background(), slog.LevelInfo)
			gotWarn := handler.Enabled(context.Background(), slog.LevelWarn)

			if gotDebug != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, gotDebug, tt.wantDebug)
			}
			if gotInfo != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, gotInfo, tt.wantInfo)
			}
			if gotWarn != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, gotWarn, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	// Loggers created before Initialize default to info and pick up
	// configured levels afterwards.
	early := GetLogger("runner")
	if early.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("pre-init logger should default to info level")
	}

	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"runner": "debug"},
	})

	if !GetLogger("runner").Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("runner logger should accept debug after Initialize")
	}
}

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})

	if GetLogger("runner") != GetLogger("runner") {
		t.Error("GetLogger should return the same logger per module")
	}
}

func TestApplyChangesLevelsAtRuntime(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})

	logger := GetLogger("runner")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("runner should start at info")
	}

	Apply(Config{
		Level:   "info",
		Modules: map[string]string{"runner": "debug"},
	})

	// Same logger instance, new effective level.
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("runner logger should accept debug after Apply")
	}
}

func TestRingBufferCapturesEntries(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})

	GetLogger("runner").Info("lifecycle step", "step", "writePIDFile")

	entries := GetBuffer().ReadAll()
	if len(entries) == 0 {
		t.Fatal("expected entry in ring buffer")
	}

	last := entries[len(entries)-1]
	if last.Module != "runner" {
		t.Errorf("expected module runner, got %q", last.Module)
	}
	if last.Message != "lifecycle step" {
		t.Errorf("unexpected message %q", last.Message)
	}
	if last.Attributes["step"] != "writePIDFile" {
		t.Errorf("expected step attribute, got %v", last.Attributes)
	}
}

func TestLogCallback(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})

	var got []LogEntry
	SetLogCallback(func(entry LogEntry) {
		got = append(got, entry)
	})
	defer SetLogCallback(nil)

	GetLogger("child").Warn("command exited", "exit_code", 1)

	if len(got) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(got))
	}
	if got[0].Level != "warn" || got[0].Module != "child" {
		t.Errorf("unexpected entry %+v", got[0])
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := range 5 {
		rb.Write(LogEntry{Message: string(rune('a' + i))})
	}

	entries := rb.ReadAll()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"c", "d", "e"} {
		if entries[i].Message != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := parseLevel(tt.in)
		if tt.ok {
			if got == nil || *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		} else if got != nil {
			t.Errorf("parseLevel(%q) = %v, want nil", tt.in, *got)
		}
	}
}

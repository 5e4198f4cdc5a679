package child

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/smazurov/procrun/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCommand(command string) *Command {
	return New(command, testLogger(), &Options{
		GracefulTimeout: 100 * time.Millisecond,
		KillTimeout:     100 * time.Millisecond,
	})
}

func runAsync(c *Command) <-chan int {
	done := make(chan int, 1)
	go func() {
		done <- c.Run()
	}()
	return done
}

func waitForExit(t *testing.T, done <-chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case exitCode := <-done:
		return exitCode
	case <-time.After(timeout):
		t.Fatal("timeout waiting for command to exit")
		return -1
	}
}

func TestRunToCompletion(t *testing.T) {
	c := newTestCommand("true")

	if code := waitForExit(t, runAsync(c), time.Second); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestExitCodePropagated(t *testing.T) {
	c := newTestCommand(`sh -c "exit 3"`)

	if code := waitForExit(t, runAsync(c), time.Second); code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
}

func TestGracefulStop(t *testing.T) {
	c := newTestCommand(`sh -c "trap 'exit 0' INT TERM; while :; do sleep 0.1; done"`)
	c.gracefulTimeout = 500 * time.Millisecond

	done := runAsync(c)
	time.Sleep(100 * time.Millisecond)
	c.Stop()

	if code := waitForExit(t, done, time.Second); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestForceKillOnTimeout(t *testing.T) {
	c := newTestCommand(`sh -c "trap '' INT; sleep 10"`)
	c.gracefulTimeout = 50 * time.Millisecond
	c.killTimeout = 50 * time.Millisecond

	done := runAsync(c)
	time.Sleep(50 * time.Millisecond)
	c.Stop()

	if code := waitForExit(t, done, 500*time.Millisecond); code != killedExitCode {
		t.Errorf("expected exit code %d, got %d", killedExitCode, code)
	}
}

func TestInvalidCommand(t *testing.T) {
	c := newTestCommand("/nonexistent/binary")

	if code := waitForExit(t, runAsync(c), time.Second); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestEmptyCommand(t *testing.T) {
	c := newTestCommand("")

	if code := waitForExit(t, runAsync(c), time.Second); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestPublishesChildExitedEvent(t *testing.T) {
	bus := events.New()
	received := make(chan events.ChildExitedEvent, 1)
	unsub := bus.Subscribe(func(e events.ChildExitedEvent) {
		received <- e
	})
	defer unsub()

	c := New(`sh -c "exit 2"`, testLogger(), &Options{Bus: bus})
	waitForExit(t, runAsync(c), time.Second)

	select {
	case e := <-received:
		if e.ExitCode != 2 {
			t.Errorf("expected exit code 2 in event, got %d", e.ExitCode)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ChildExitedEvent")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"simple", "echo hello", []string{"echo", "hello"}, false},
		{"double quotes", `sh -c "echo hi"`, []string{"sh", "-c", "echo hi"}, false},
		{"single quotes", `sh -c 'trap "" INT'`, []string{"sh", "-c", `trap "" INT`}, false},
		{"escaped space", `echo hello\ world`, []string{"echo", "hello world"}, false},
		{"extra spaces", "  echo   hi  ", []string{"echo", "hi"}, false},
		{"unclosed quote", `echo "oops`, nil, true},
		{"empty", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitCommand(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

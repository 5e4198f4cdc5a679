package reactor

import (
	"testing"
	"time"
)

// runAsync runs the reactor in a goroutine and returns a channel closed
// when Run returns.
func runAsync(r Reactor) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		r.Run()
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timeout waiting for reactor to stop")
	}
}

func TestSignalsInstallIdempotent(t *testing.T) {
	r := NewSignals()

	if r.IsInstalled() {
		t.Fatal("reactor should not report installed before Install")
	}
	if err := r.Install(); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if err := r.Install(); err != nil {
		t.Fatalf("second install failed: %v", err)
	}
	if !r.IsInstalled() {
		t.Error("reactor should report installed")
	}

	r.Stop()
	waitDone(t, runAsync(r), time.Second)
}

func TestSignalsStopUnblocksRun(t *testing.T) {
	r := NewSignals()
	if err := r.Install(); err != nil {
		t.Fatal(err)
	}

	done := runAsync(r)
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	waitDone(t, done, time.Second)
}

func TestSignalsStopIdempotent(t *testing.T) {
	r := NewSignals()

	r.Stop()
	r.Stop()
	waitDone(t, runAsync(r), time.Second)
}

func TestSignalsCallbackOrder(t *testing.T) {
	r := NewSignals()

	var calls []string
	r.RunWhenRunning(func() { calls = append(calls, "running-1") })
	r.RunWhenRunning(func() { calls = append(calls, "running-2") })
	r.RunAfterStop(func() { calls = append(calls, "stopped") })

	r.Stop()
	waitDone(t, runAsync(r), time.Second)

	want := []string{"running-1", "running-2", "stopped"}
	if len(calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, calls)
		}
	}
}

func TestSignalsStopFromWhenRunning(t *testing.T) {
	r := NewSignals()
	r.RunWhenRunning(r.Stop)

	waitDone(t, runAsync(r), time.Second)
}

func TestDefaultLazyCreation(t *testing.T) {
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })

	first := Default()
	if first == nil {
		t.Fatal("Default returned nil")
	}
	if Default() != first {
		t.Error("Default should return the same instance on repeated calls")
	}
}

func TestSetDefaultOverride(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	mem := NewMemory()
	SetDefault(mem)

	if Default() != Reactor(mem) {
		t.Error("Default should return the injected reactor")
	}
}

func TestMemoryRecordsAndFires(t *testing.T) {
	r := NewMemory()

	var calls []string
	r.RunWhenRunning(func() { calls = append(calls, "running") })
	r.RunAfterStop(func() { calls = append(calls, "stopped") })

	if err := r.Install(); err != nil {
		t.Fatal(err)
	}
	r.Run()

	if !r.HasInstalled || !r.HasRun {
		t.Errorf("expected installed and run to be recorded, got %+v", r)
	}
	if len(calls) != 2 || calls[0] != "running" || calls[1] != "stopped" {
		t.Errorf("unexpected callback order: %v", calls)
	}
}

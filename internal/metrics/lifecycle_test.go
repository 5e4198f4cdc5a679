package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/procrun/internal/events"
)

func TestStepEntered(t *testing.T) {
	l := NewLifecycle()

	l.StepEntered("writePIDFile")
	l.StepEntered("writePIDFile")
	l.StepEntered("startReactor")

	if got := testutil.ToFloat64(l.steps.WithLabelValues("writePIDFile")); got != 2 {
		t.Errorf("writePIDFile steps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(l.steps.WithLabelValues("startReactor")); got != 1 {
		t.Errorf("startReactor steps = %v, want 1", got)
	}
}

// waitForCounter polls until the counter reaches want or the deadline
// expires. Bus delivery is asynchronous.
func waitForCounter(t *testing.T, read func() float64, want float64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if read() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("counter never reached %v, last value %v", want, read())
}

func TestObserveBusEvents(t *testing.T) {
	l := NewLifecycle()
	bus := events.New()
	l.Observe(bus)
	defer l.Close()

	bus.Publish(events.StepEvent{Step: "killIfRequested"})
	waitForCounter(t, func() float64 {
		return testutil.ToFloat64(l.steps.WithLabelValues("killIfRequested"))
	}, 1)

	bus.Publish(events.KillRequestedEvent{PID: 1337})
	waitForCounter(t, func() float64 {
		return testutil.ToFloat64(l.killRequests)
	}, 1)

	bus.Publish(events.ReactorRunningEvent{})
	waitForCounter(t, func() float64 {
		return testutil.ToFloat64(l.reactorRunning)
	}, 1)

	bus.Publish(events.ReactorStoppedEvent{Uptime: 90 * time.Second})
	waitForCounter(t, func() float64 {
		return testutil.ToFloat64(l.reactorRunning)
	}, 0)
	waitForCounter(t, func() float64 {
		return testutil.ToFloat64(l.reactorUptime)
	}, 90)

	bus.Publish(events.ChildExitedEvent{ExitCode: 2})
	waitForCounter(t, func() float64 {
		return testutil.ToFloat64(l.childExits.WithLabelValues("2"))
	}, 1)
}

func TestCloseUnsubscribes(t *testing.T) {
	l := NewLifecycle()
	bus := events.New()
	l.Observe(bus)
	l.Close()

	bus.Publish(events.KillRequestedEvent{PID: 1})
	time.Sleep(50 * time.Millisecond)

	if got := testutil.ToFloat64(l.killRequests); got != 0 {
		t.Errorf("kill requests after Close = %v, want 0", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	l := NewLifecycle()
	l.StepEntered("removePIDFile")

	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "procrun_lifecycle_steps_total") {
		t.Error("expected lifecycle step counter in output")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go collector output")
	}
}

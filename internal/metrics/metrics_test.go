package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReloadCountsByResult(t *testing.T) {
	okBefore := testutil.ToFloat64(reloadsTotal.WithLabelValues("drivers", "ok"))
	errBefore := testutil.ToFloat64(reloadsTotal.WithLabelValues("drivers", "error"))

	Reload("drivers", 0.01, nil)
	Reload("drivers", 0.02, errors.New("boom"))
	Reload("drivers", 0.01, nil)

	if got := testutil.ToFloat64(reloadsTotal.WithLabelValues("drivers", "ok")) - okBefore; got != 2 {
		t.Fatalf("ok reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reloadsTotal.WithLabelValues("drivers", "error")) - errBefore; got != 1 {
		t.Fatalf("error reloads = %v, want 1", got)
	}
}

func TestAdvisoryGauge(t *testing.T) {
	Advisory("reboot", true)
	if v := testutil.ToFloat64(advisoryRaised.WithLabelValues("reboot")); v != 1 {
		t.Fatalf("gauge = %v, want 1", v)
	}
	Advisory("reboot", false)
	if v := testutil.ToFloat64(advisoryRaised.WithLabelValues("reboot")); v != 0 {
		t.Fatalf("gauge = %v, want 0", v)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(togglesTotal.WithLabelValues("rejected"))
	Toggle("rejected")
	if got := testutil.ToFloat64(togglesTotal.WithLabelValues("rejected")) - before; got != 1 {
		t.Fatalf("toggles = %v, want 1", got)
	}
	before = testutil.ToFloat64(pushNotificationsTotal.WithLabelValues("module"))
	PushNotification("module")
	if got := testutil.ToFloat64(pushNotificationsTotal.WithLabelValues("module")) - before; got != 1 {
		t.Fatalf("push = %v, want 1", got)
	}
	LifecycleTransition("install", "succeeded")
	if got := testutil.ToFloat64(lifecycleTransitionsTotal.WithLabelValues("install", "succeeded")); got < 1 {
		t.Fatalf("transitions = %v", got)
	}
}

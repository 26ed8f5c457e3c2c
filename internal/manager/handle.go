package manager

import (
	"context"
	"fmt"
	"time"

	"cleepadm/internal/lifecycle"
	"cleepadm/internal/metrics"
	"cleepadm/internal/push"
	"cleepadm/internal/reconciler"
	"cleepadm/internal/rendering"
	"cleepadm/pkg/types"
)

// handle applies one push notification. Runs on the loop goroutine.
func (m *Manager) handle(ctx context.Context, n push.Notification) {
	switch n := n.(type) {
	case push.ModuleStatus:
		metrics.PushNotification("module")
		m.handleModule(ctx, n.Event)
	case push.DriverStatus:
		metrics.PushNotification("driver")
		m.handleDriver(ctx, n.Event)
	case push.NeedRestart:
		metrics.PushNotification("needrestart")
		_, _ = m.reload(ctx, reconciler.ScopeSystem)
	case push.NeedReboot:
		metrics.PushNotification("needreboot")
		_, _ = m.reload(ctx, reconciler.ScopeSystem)
	case push.Monitoring:
		metrics.PushNotification("monitoring")
		m.mu.Lock()
		if n.Metric == "cpu" {
			m.cpu = n.Data
		} else {
			m.memory = n.Data
		}
		m.mu.Unlock()
	}
}

func (m *Manager) handleModule(ctx context.Context, ev lifecycle.StatusEvent) {
	tr, effect := m.tracker.Apply(ev)
	if !tr.Changed {
		m.log.Debug().Str("module", ev.Module).Str("reason", tr.Reason).Msg("status ignored")
		return
	}
	metrics.LifecycleTransition(ev.Kind.String(), string(tr.To.Phase))
	m.log.Info().
		Str("event", "module_"+string(tr.To.Phase)).
		Str("module", ev.Module).
		Str("kind", ev.Kind.String()).
		Msg("module status")

	switch tr.To.Phase {
	case lifecycle.PhaseProcessing:
		return
	case lifecycle.PhaseCanceled:
		m.publish(Event{
			Name:    "module_canceled",
			Level:   LevelWarning,
			Module:  ev.Module,
			Message: fmt.Sprintf("%s %s canceled", displayName(ev.Module), operation(ev.Kind)),
		})
		return
	}

	// terminal: the reload runs to completion before the next notification
	_, err := m.reload(ctx, reconciler.ScopeAll)
	m.tracker.Complete(ev.Module, effect)

	switch effect {
	case lifecycle.EffectReloadReportFailure:
		m.publish(Event{
			Name:    "module_failed",
			Level:   LevelError,
			Module:  ev.Module,
			Message: fmt.Sprintf("Error during %s %s", displayName(ev.Module), operation(ev.Kind)),
		})
	case lifecycle.EffectReloadMarkPending:
		m.publish(Event{
			Name:    "module_succeeded",
			Level:   LevelSuccess,
			Module:  ev.Module,
			Message: fmt.Sprintf("%s %s. Restart required.", displayName(ev.Module), pastTense(ev.Kind)),
			Fields:  map[string]any{"reload_error": errString(err)},
		})
	}
}

func (m *Manager) handleDriver(ctx context.Context, ev lifecycle.DriverEvent) {
	st, changed, effect := m.drivers.Apply(ev)
	if !changed {
		return
	}
	metrics.LifecycleTransition("driver_"+ev.Kind.String(), string(st.Phase))
	name := ev.Key.Type + "/" + ev.Key.Name
	m.log.Info().
		Str("event", "driver_"+string(st.Phase)).
		Str("driver", name).
		Str("kind", ev.Kind.String()).
		Msg("driver status")
	if effect != lifecycle.EffectReloadDrivers {
		return
	}
	_, _ = m.reload(ctx, reconciler.ScopeDrivers)
	if st.Phase == lifecycle.PhaseSucceeded {
		m.publish(Event{
			Name:    "driver_succeeded",
			Level:   LevelSuccess,
			Module:  name,
			Message: fmt.Sprintf("Driver %s %s. Reboot required.", ev.Key.Name, pastTense(ev.Kind)),
		})
		return
	}
	msg := fmt.Sprintf("Error during driver %s %s", ev.Key.Name, operation(ev.Kind))
	if ev.Message != "" {
		msg += ": " + ev.Message
	}
	m.publish(Event{Name: "driver_failed", Level: LevelError, Module: name, Message: msg})
}

// reload pulls a scope and feeds the new snapshot to its dependents.
func (m *Manager) reload(ctx context.Context, scope reconciler.Scope) (*types.MergedConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, m.reloadTimeout)
	defer cancel()
	start := time.Now()
	cfg, err := m.recon.Reload(ctx, scope)
	metrics.Reload(scope.String(), time.Since(start).Seconds(), err)
	if err != nil {
		m.publish(Event{
			Name:    "reload_failed",
			Level:   LevelError,
			Message: "Unable to reload configuration: " + err.Error(),
			Fields:  map[string]any{"scope": scope.String()},
		})
		m.mu.Lock()
		m.err = err.Error()
		m.mu.Unlock()
		return cfg, err
	}
	m.observe(cfg, scope)
	if scope == reconciler.ScopeAll {
		if !m.Ready() {
			return cfg, m.becomeReady(ctx)
		}
		m.mu.Lock()
		m.err = ""
		m.mu.Unlock()
	}
	return cfg, nil
}

// becomeReady finishes a full load made while the manager was not ready.
func (m *Manager) becomeReady(ctx context.Context) error {
	if err := m.loadRenderings(ctx); err != nil {
		m.setState(StateError, err)
		return err
	}
	m.setState(StateReady, nil)
	m.log.Info().Msg("manager ready")
	return nil
}

// observe hands a merged snapshot to the components derived from it.
func (m *Manager) observe(cfg *types.MergedConfig, scope reconciler.Scope) {
	if scope.IncludesSystem() {
		change := m.advisory.OnConfigObserved(cfg.System.NeedRestart, cfg.System.NeedReboot)
		if change.RestartCleared {
			// the backend restarted: pending operations are applied
			m.tracker.ResetPending()
		}
		metrics.Advisory("restart", cfg.System.NeedRestart)
		metrics.Advisory("reboot", cfg.System.NeedReboot)
		m.registry.Replace(rendering.FromWire(cfg.System.EventsNotRenderable))
	}
	if scope.IncludesModules() {
		m.tracker.Seed(cfg.Modules)
	}
	if scope.IncludesDrivers() {
		m.drivers.Seed(cfg.Drivers)
	}
}

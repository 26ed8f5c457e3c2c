package manager

import (
	"time"

	"cleepadm/internal/advisory"
	"cleepadm/internal/lifecycle"
	"cleepadm/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Err: m.err}
}

// Config returns the current merged configuration. Callers must not mutate it.
func (m *Manager) Config() *types.MergedConfig { return m.recon.Snapshot() }

// Modules joins tracked lifecycle states with the inventory of the last reload.
func (m *Manager) Modules() types.ModulesResponse {
	cfg := m.recon.Snapshot()
	m.mu.RLock()
	debug := m.debug
	m.mu.RUnlock()

	resp := types.ModulesResponse{
		Modules: []types.ModuleStatus{},
		Cleep:   types.ModuleStatus{Module: lifecycle.CleepModule, Phase: string(lifecycle.PhaseIdle)},
	}
	for _, st := range m.tracker.States() {
		ms := moduleStatus(st)
		if st.Module == lifecycle.CleepModule {
			resp.Cleep = ms
			continue
		}
		if info, ok := cfg.Modules[st.Module]; ok {
			ms.Info = &info
		}
		ms.Debug = debug[st.Module]
		resp.Modules = append(resp.Modules, ms)
	}
	return resp
}

func moduleStatus(st lifecycle.State) types.ModuleStatus {
	ms := types.ModuleStatus{
		Module:  st.Module,
		Phase:   string(st.Phase),
		Kind:    st.Kind.String(),
		Pending: st.Pending,
	}
	if !st.Updated.IsZero() {
		ms.UpdatedUnix = st.Updated.Unix()
	}
	return ms
}

// Drivers joins tracked driver states with the driver inventory.
func (m *Manager) Drivers() []types.DriverStatus {
	installed := map[lifecycle.DriverKey]bool{}
	for _, d := range m.recon.Snapshot().Drivers {
		installed[lifecycle.DriverKey{Type: d.DriverType, Name: d.DriverName}] = d.Installed
	}
	states := m.drivers.States()
	out := make([]types.DriverStatus, 0, len(states))
	for _, st := range states {
		out = append(out, types.DriverStatus{
			DriverType: st.Key.Type,
			DriverName: st.Key.Name,
			Phase:      string(st.Phase),
			Kind:       st.Kind.String(),
			Installed:  installed[st.Key],
			Message:    st.Message,
		})
	}
	return out
}

// Renderings lists every eligible pair with its suppression flag.
func (m *Manager) Renderings() types.RenderingsResponse {
	rs := m.registry.Renderings()
	resp := types.RenderingsResponse{Renderings: make([]types.RenderingStatus, 0, len(rs))}
	for _, r := range rs {
		resp.Renderings = append(resp.Renderings, types.RenderingStatus{
			Renderer:   r.Renderer,
			Event:      r.Event,
			Suppressed: r.Suppressed,
		})
	}
	return resp
}

// Advisory reports the restart/reboot flags and the affordances they hold.
func (m *Manager) Advisory() types.AdvisoryResponse {
	restart, reboot := m.advisory.Flags()
	resp := types.AdvisoryResponse{
		NeedsRestart: restart,
		NeedsReboot:  reboot,
		Affordances:  []types.AffordanceStatus{},
	}
	for _, b := range m.toolbar.Buttons() {
		resp.Affordances = append(resp.Affordances, types.AffordanceStatus{
			Handle: string(b.Handle),
			Label:  b.Label,
			Icon:   b.Icon,
		})
	}
	return resp
}

// AffordanceHandle returns the handle held for a flag, empty when not raised.
func (m *Manager) AffordanceHandle(f advisory.Flag) string {
	return string(m.advisory.Handle(f))
}

func (m *Manager) Notifications() types.NotificationsResponse {
	return types.NotificationsResponse{Notifications: m.notes.Notifications()}
}

func (m *Manager) Monitoring() types.MonitoringResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return types.MonitoringResponse{CPU: m.cpu, Memory: m.memory}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	processing, pending := 0, 0
	for _, st := range m.tracker.States() {
		if st.Phase == lifecycle.PhaseProcessing {
			processing++
		}
		if st.Pending {
			pending++
		}
	}
	now := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		State:          string(m.state),
		ConfigRevision: m.recon.Snapshot().Revision,
		Processing:     processing,
		Pending:        pending,
		LastError:      m.err,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	if m.pushProbe != nil {
		resp.PushConnected = m.pushProbe()
	}
	return resp
}

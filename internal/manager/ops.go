package manager

import (
	"context"
	"encoding/json"

	"cleepadm/internal/reconciler"
	"cleepadm/internal/rpc"
)

// Module operations only start the work on the backend; progress arrives
// through push notifications.

func (m *Manager) InstallModule(ctx context.Context, module string) error {
	return m.send(ctx, rpc.InstallModule(module), "Unable to install "+module)
}

func (m *Manager) UpdateModule(ctx context.Context, module string) error {
	return m.send(ctx, rpc.UpdateModule(module), "Unable to update "+module)
}

func (m *Manager) UninstallModule(ctx context.Context, module string) error {
	return m.send(ctx, rpc.UninstallModule(module), "Unable to uninstall "+module)
}

func (m *Manager) UpdateCleep(ctx context.Context) error {
	return m.send(ctx, rpc.UpdateCleep(), "Unable to update Cleep")
}

func (m *Manager) InstallDriver(ctx context.Context, driverType, driverName string, force bool) error {
	return m.send(ctx, rpc.InstallDriver(driverType, driverName, force), "Unable to install driver "+driverName)
}

func (m *Manager) UninstallDriver(ctx context.Context, driverType, driverName string) error {
	return m.send(ctx, rpc.UninstallDriver(driverType, driverName), "Unable to uninstall driver "+driverName)
}

func (m *Manager) Reboot(ctx context.Context) error {
	return m.send(ctx, rpc.RebootDevice(), "Unable to reboot device")
}

func (m *Manager) Poweroff(ctx context.Context) error {
	return m.send(ctx, rpc.PoweroffDevice(), "Unable to power off device")
}

func (m *Manager) Restart(ctx context.Context) error {
	return m.send(ctx, rpc.RestartCleep(), "Unable to restart Cleep")
}

func (m *Manager) ClearLogs(ctx context.Context) error {
	return m.send(ctx, rpc.ClearLogs(), "Unable to clear logs")
}

// BackupConfig asks the backend to snapshot its configuration now instead of
// waiting for the backup delay.
func (m *Manager) BackupConfig(ctx context.Context) error {
	return m.send(ctx, rpc.BackupCleepConfig(), "Unable to backup Cleep config")
}

// CheckUpdates asks the backend to look for module updates, then reloads the
// inventory so updatable versions show up.
func (m *Manager) CheckUpdates(ctx context.Context) error {
	if err := m.send(ctx, rpc.CheckModulesUpdates(), "Unable to check for updates"); err != nil {
		return err
	}
	return m.do(ctx, func(lctx context.Context) error {
		_, err := m.reload(lctx, reconciler.ScopeAll)
		return err
	})
}

// Logs returns the backend logs as sent by the backend.
func (m *Manager) Logs(ctx context.Context) (json.RawMessage, error) {
	data, err := m.cmd.Send(ctx, rpc.GetLogs())
	if err != nil {
		m.reportCommandError(rpc.GetLogs(), "Unable to get logs", err)
		return nil, err
	}
	return data, nil
}

// InvokeAffordance runs the action bound to an advisory handle.
func (m *Manager) InvokeAffordance(handle string) error {
	for _, b := range m.toolbar.Buttons() {
		if string(b.Handle) == handle {
			return m.toolbar.Invoke(b.Handle)
		}
	}
	return ErrNotFound("affordance " + handle)
}

// send issues a command and reports a failure once.
func (m *Manager) send(ctx context.Context, cmd rpc.Command, failure string) error {
	if _, err := m.cmd.Send(ctx, cmd); err != nil {
		m.reportCommandError(cmd, failure, err)
		return err
	}
	m.log.Info().Str("event", "command_sent").Str("command", cmd.Name).Msg("command accepted")
	return nil
}

func (m *Manager) reportCommandError(cmd rpc.Command, failure string, err error) {
	m.log.Warn().Str("command", cmd.Name).Err(err).Msg("command failed")
	m.publish(Event{
		Name:    "command_failed",
		Level:   LevelError,
		Message: failure + ": " + err.Error(),
		Fields:  map[string]any{"command": cmd.Name},
	})
}

package manager

import (
	"context"
	"encoding/json"
	"maps"
	"strconv"

	"cleepadm/internal/reconciler"
	"cleepadm/internal/rpc"
)

// Setting names accepted by SetSetting.
const (
	SettingMonitoring  = "monitoring"
	SettingCrashReport = "crashreport"
	SettingCoreDebug   = "coredebug"
	SettingTrace       = "trace"
	SettingModuleDebug = "moduledebug"
	SettingBackupDelay = "backupdelay"
)

// Backup delay bounds in minutes.
const (
	minBackupDelay = 5
	maxBackupDelay = 120
)

// SetSetting changes one setting on the backend and reloads the affected
// configuration: the module's own for moduledebug, the system one otherwise.
func (m *Manager) SetSetting(ctx context.Context, name string, value json.RawMessage, module string) error {
	cmd, err := settingCommand(name, value, module)
	if err != nil {
		return err
	}
	if err := m.send(ctx, cmd, "Unable to change "+name); err != nil {
		return err
	}
	scope := reconciler.ScopeSystem
	if name == SettingModuleDebug {
		scope = reconciler.ScopeModule(module)
		var on bool
		_ = json.Unmarshal(value, &on)
		m.mu.Lock()
		// readers hold the previous map without the lock
		next := maps.Clone(m.debug)
		next[module] = on
		m.debug = next
		m.mu.Unlock()
	}
	return m.do(ctx, func(lctx context.Context) error {
		_, err := m.reload(lctx, scope)
		return err
	})
}

// settingCommand validates a setting value and builds its command.
func settingCommand(name string, value json.RawMessage, module string) (rpc.Command, error) {
	if name == SettingBackupDelay {
		var delay int
		if err := json.Unmarshal(value, &delay); err != nil {
			return rpc.Command{}, ErrInvalidSetting(name, "expected an integer")
		}
		if delay < minBackupDelay || delay > maxBackupDelay {
			return rpc.Command{}, ErrInvalidSetting(name,
				"must be between "+strconv.Itoa(minBackupDelay)+" and "+strconv.Itoa(maxBackupDelay)+" minutes")
		}
		return rpc.SetBackupDelay(delay), nil
	}

	var on bool
	switch name {
	case SettingMonitoring, SettingCrashReport, SettingCoreDebug, SettingTrace, SettingModuleDebug:
		if err := json.Unmarshal(value, &on); err != nil {
			return rpc.Command{}, ErrInvalidSetting(name, "expected a boolean")
		}
	default:
		return rpc.Command{}, ErrNotFound("setting " + name)
	}
	switch name {
	case SettingMonitoring:
		return rpc.SetMonitoring(on), nil
	case SettingCrashReport:
		return rpc.SetCrashReport(on), nil
	case SettingCoreDebug:
		return rpc.SetCoreDebug(on), nil
	case SettingTrace:
		return rpc.SetTrace(on), nil
	}
	if module == "" {
		return rpc.Command{}, ErrInvalidSetting(name, "module is required")
	}
	return rpc.SetModuleDebug(module, on), nil
}

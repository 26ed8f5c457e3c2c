package rpc

// Backend modules commands are addressed to.
const (
	ToSystem    = "system"
	ToUpdate    = "update"
	ToInventory = "inventory"
)

func InstallModule(module string) Command {
	return Command{Name: "install_module", To: ToUpdate, Params: map[string]any{"module": module}, Timeout: LongTimeout}
}

func UninstallModule(module string) Command {
	return Command{Name: "uninstall_module", To: ToUpdate, Params: map[string]any{"module": module}, Timeout: LongTimeout}
}

func UpdateModule(module string) Command {
	return Command{Name: "update_module", To: ToUpdate, Params: map[string]any{"module": module}, Timeout: LongTimeout}
}

func UpdateCleep() Command {
	return Command{Name: "update_cleep", To: ToUpdate, Params: map[string]any{}}
}

func CheckModulesUpdates() Command {
	return Command{Name: "check_modules_updates", To: ToUpdate, Timeout: LongTimeout}
}

// SetEventRenderable is the current rendering wire variant: renderable=true means not suppressed.
func SetEventRenderable(renderer, event string, renderable bool) Command {
	return Command{Name: "set_event_renderable", To: ToSystem, Params: map[string]any{
		"renderer_name": renderer,
		"event_name":    event,
		"renderable":    renderable,
	}}
}

// SetEventNotRendered is the legacy rendering wire variant: disabled=true means suppressed.
func SetEventNotRendered(renderer, event string, disabled bool) Command {
	return Command{Name: "set_event_not_rendered", To: ToSystem, Params: map[string]any{
		"renderer": renderer,
		"event":    event,
		"disabled": disabled,
	}}
}

func GetEvents() Command       { return Command{Name: "get_events", To: ToInventory} }
func GetRenderers() Command    { return Command{Name: "get_renderers", To: ToInventory} }
func GetModulesDebug() Command { return Command{Name: "get_modules_debug", To: ToInventory} }
func GetModules() Command      { return Command{Name: "get_modules", To: ToInventory} }
func GetDrivers() Command      { return Command{Name: "get_drivers", To: ToInventory} }

// GetModuleConfig fetches the configuration of one module.
func GetModuleConfig(module string) Command {
	return Command{Name: "get_module_config", To: module}
}

func InstallDriver(driverType, driverName string, force bool) Command {
	return Command{Name: "install_driver", To: ToSystem, Params: map[string]any{
		"driver_type": driverType,
		"driver_name": driverName,
		"force":       force,
	}, Timeout: LongTimeout}
}

func UninstallDriver(driverType, driverName string) Command {
	return Command{Name: "uninstall_driver", To: ToSystem, Params: map[string]any{
		"driver_type": driverType,
		"driver_name": driverName,
	}, Timeout: LongTimeout}
}

func SetMonitoring(on bool) Command {
	return Command{Name: "set_monitoring", To: ToSystem, Params: map[string]any{"monitoring": on}}
}

func SetCrashReport(on bool) Command {
	return Command{Name: "set_crash_report", To: ToSystem, Params: map[string]any{"enable": on}}
}

func SetCoreDebug(on bool) Command {
	return Command{Name: "set_core_debug", To: ToSystem, Params: map[string]any{"debug": on}}
}

func SetModuleDebug(module string, on bool) Command {
	return Command{Name: "set_module_debug", To: ToSystem, Params: map[string]any{"module_name": module, "debug": on}}
}

func SetTrace(on bool) Command {
	return Command{Name: "set_trace", To: ToSystem, Params: map[string]any{"trace": on}}
}

func SetBackupDelay(minutes int) Command {
	return Command{Name: "set_cleep_backup_delay", To: ToSystem, Params: map[string]any{"delay": minutes}}
}

func RebootDevice() Command   { return Command{Name: "reboot_device", To: ToSystem} }
func PoweroffDevice() Command { return Command{Name: "poweroff_device", To: ToSystem} }
func RestartCleep() Command   { return Command{Name: "restart_cleep", To: ToSystem} }
func GetLogs() Command        { return Command{Name: "get_logs", To: ToSystem, Timeout: LongTimeout / 10} }
func ClearLogs() Command      { return Command{Name: "clear_logs", To: ToSystem} }

func BackupCleepConfig() Command {
	return Command{Name: "backup_cleep_config", To: ToSystem, Timeout: LongTimeout / 10}
}

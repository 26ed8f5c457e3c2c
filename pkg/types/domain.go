package types

import (
	"encoding/json"
	"time"
)

// CommandRequest is the JSON body posted to the backend command endpoint.
type CommandRequest struct {
	Command string         `json:"command"`
	To      string         `json:"to"`
	Params  map[string]any `json:"params,omitempty"`
	// Timeout in seconds the backend may spend on the command.
	Timeout float64 `json:"timeout,omitempty"`
}

// CommandResponse is the backend answer to a command.
type CommandResponse struct {
	Error   bool            `json:"error"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PushMessage is one frame received on the push-notification channel.
type PushMessage struct {
	Event    string          `json:"event"`
	DeviceID string          `json:"device_id,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
}

// ModuleStatusParams is the payload of system.module.* and system.cleep.update.
type ModuleStatusParams struct {
	Module        string `json:"module,omitempty"`
	Status        int    `json:"status"`
	UpdateProcess bool   `json:"updateprocess,omitempty"`
}

// DriverStatusParams is the payload of system.driver.install / system.driver.uninstall.
// Installing/Uninstalling is true while the operation runs; Success is only set once it ends.
type DriverStatusParams struct {
	DriverType   string  `json:"drivertype"`
	DriverName   string  `json:"drivername"`
	Installing   *bool   `json:"installing,omitempty"`
	Uninstalling *bool   `json:"uninstalling,omitempty"`
	Success      *bool   `json:"success"`
	Message      *string `json:"message"`
}

// RenderingPair identifies a (renderer, event) couple.
type RenderingPair struct {
	Renderer string `json:"renderer"`
	Event    string `json:"event"`
}

// DebugConfig is the debug sub-tree of the system configuration.
type DebugConfig struct {
	Core  bool `json:"core"`
	Trace bool `json:"trace"`
}

// SystemConfig is the authoritative system module configuration.
type SystemConfig struct {
	Monitoring          bool            `json:"monitoring"`
	CrashReport         bool            `json:"crashreport"`
	BackupDelay         int             `json:"cleepbackupdelay"`
	NeedRestart         bool            `json:"needrestart"`
	NeedReboot          bool            `json:"needreboot"`
	EventsNotRenderable []RenderingPair `json:"eventsnotrenderable"`
	Debug               DebugConfig     `json:"debug"`
	Version             string          `json:"version,omitempty"`
}

// ModuleInfo is the inventory entry of an installable module.
type ModuleInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Installed bool   `json:"installed"`
	Core      bool   `json:"core,omitempty"`
	Pending   bool   `json:"pending,omitempty"`
	// Updatable holds the newer version available, empty when up to date.
	Updatable string `json:"updatable,omitempty"`
}

// DriverInfo is the inventory entry of a hardware driver.
type DriverInfo struct {
	DriverType string `json:"drivertype"`
	DriverName string `json:"drivername"`
	Installed  bool   `json:"installed"`
	Processing bool   `json:"processing,omitempty"`
}

// EventInfo is one entry of get_events.
type EventInfo struct {
	Profiles []string `json:"profiles"`
}

// ModuleDebug is one entry of get_modules_debug.
type ModuleDebug struct {
	Debug bool `json:"debug"`
}

// MergedConfig is an immutable snapshot of the authoritative backend configuration.
// A new value is built on every reload; existing values are never mutated.
type MergedConfig struct {
	Revision      uint64                     `json:"revision"`
	LoadedAt      time.Time                  `json:"loaded_at"`
	System        SystemConfig               `json:"system"`
	Modules       map[string]ModuleInfo      `json:"modules"`
	ModuleConfigs map[string]json.RawMessage `json:"module_configs,omitempty"`
	Drivers       []DriverInfo               `json:"drivers"`
}

package types

import (
	"encoding/json"
	"time"
)

// AckResponse acknowledges a mutation. For module and driver operations it only
// means the backend accepted the command; progress arrives via GET /modules.
type AckResponse struct {
	// example: accepted
	Status string `json:"status" example:"accepted"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModuleStatus is the lifecycle view of one module returned by GET /modules.
type ModuleStatus struct {
	// Module name.
	// example: weather
	Module string `json:"module" example:"weather"`
	// Lifecycle phase (idle, processing, failed, succeeded, canceled).
	// example: processing
	Phase string `json:"phase" example:"processing"`
	// Operation kind of the last observed transition (install, update, uninstall).
	// example: update
	Kind string `json:"kind,omitempty" example:"update"`
	// True when a completed operation waits for an application restart.
	// example: true
	Pending bool `json:"pending" example:"true"`
	// Module debug logging enabled.
	Debug bool `json:"debug,omitempty"`
	// Inventory data merged from the last configuration reload, when known.
	Info *ModuleInfo `json:"info,omitempty"`
	// Last transition time (unix seconds).
	// example: 1700000000
	UpdatedUnix int64 `json:"updated_unix,omitempty" example:"1700000000"`
}

// ModulesResponse wraps GET /modules.
type ModulesResponse struct {
	Modules []ModuleStatus `json:"modules"`
	// Platform self-update lifecycle.
	Cleep ModuleStatus `json:"cleep"`
}

// DriverStatus is the lifecycle view of one driver.
type DriverStatus struct {
	DriverType string `json:"drivertype" example:"audio"`
	DriverName string `json:"drivername" example:"respeaker2mic"`
	Phase      string `json:"phase" example:"succeeded"`
	Kind       string `json:"kind,omitempty" example:"install"`
	Installed  bool   `json:"installed"`
	Message    string `json:"message,omitempty"`
}

// RenderingStatus is one eligible (renderer, event) pair with its suppression flag.
type RenderingStatus struct {
	Renderer   string `json:"renderer" example:"sms"`
	Event      string `json:"event" example:"system.alert.memory"`
	Suppressed bool   `json:"suppressed" example:"false"`
}

// RenderingsResponse wraps GET /renderings.
type RenderingsResponse struct {
	Renderings []RenderingStatus `json:"renderings"`
}

// ToggleRenderingRequest is the body of POST /renderings/toggle.
type ToggleRenderingRequest struct {
	Renderer string `json:"renderer"`
	Event    string `json:"event"`
}

// AffordanceStatus describes one advisory affordance (restart or reboot button).
type AffordanceStatus struct {
	Handle string `json:"handle"`
	Label  string `json:"label"`
	Icon   string `json:"icon,omitempty"`
}

// AdvisoryResponse is returned by GET /advisory.
type AdvisoryResponse struct {
	NeedsRestart bool               `json:"needs_restart"`
	NeedsReboot  bool               `json:"needs_reboot"`
	Affordances  []AffordanceStatus `json:"affordances"`
}

// Notification is a user-facing message produced by the reconciliation engine.
type Notification struct {
	ID      string    `json:"id"`
	Level   string    `json:"level" example:"error"`
	Name    string    `json:"name" example:"module_failed"`
	Module  string    `json:"module,omitempty" example:"weather"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// NotificationsResponse wraps GET /notifications.
type NotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// SettingRequest is the body of POST /system/settings/{name}.
type SettingRequest struct {
	Value  json.RawMessage `json:"value"`
	Module string          `json:"module,omitempty"`
}

// LogsResponse wraps GET /system/logs; Logs is passed through as returned by the backend.
type LogsResponse struct {
	Logs json.RawMessage `json:"logs"`
}

// MonitoringResponse holds the last cpu/memory samples pushed by the backend.
type MonitoringResponse struct {
	CPU    json.RawMessage `json:"cpu,omitempty"`
	Memory json.RawMessage `json:"memory,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall state (starting, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Revision of the last merged configuration.
	// example: 12
	ConfigRevision uint64 `json:"config_revision" example:"12"`
	// Number of modules currently processing an operation.
	// example: 1
	Processing int `json:"processing" example:"1"`
	// Number of modules waiting for a restart.
	// example: 1
	Pending int `json:"pending" example:"1"`
	// Push channel connected.
	PushConnected bool `json:"push_connected"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

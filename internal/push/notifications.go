package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cleepadm/internal/lifecycle"
	"cleepadm/pkg/types"
)

// Push channel names.
const (
	EventModuleInstall    = "system.module.install"
	EventModuleUpdate     = "system.module.update"
	EventModuleUninstall  = "system.module.uninstall"
	EventCleepUpdate      = "system.cleep.update"
	EventCleepNeedRestart = "system.cleep.needrestart"
	EventDriverInstall    = "system.driver.install"
	EventDriverUninstall  = "system.driver.uninstall"
	EventMonitoringCPU    = "system.monitoring.cpu"
	EventMonitoringMem    = "system.monitoring.memory"

	// any event ending with this suffix raises the reboot flag
	suffixNeedReboot = "device.needreboot"
)

// ErrUnhandled is returned by Decode for events the engine does not consume.
var ErrUnhandled = errors.New("unhandled push event")

// Notification is the closed set of push notifications the engine consumes.
// Decode is the only place event names are compared.
type Notification interface {
	notification()
}

// ModuleStatus is a module (or platform self-update) lifecycle notification.
type ModuleStatus struct {
	Event lifecycle.StatusEvent
}

// DriverStatus is a driver lifecycle notification.
type DriverStatus struct {
	Event lifecycle.DriverEvent
}

// NeedRestart signals the backend needs an application restart.
type NeedRestart struct{}

// NeedReboot signals the device needs a reboot.
type NeedReboot struct{}

// Monitoring carries a raw cpu or memory sample.
type Monitoring struct {
	Metric string // "cpu" or "memory"
	Data   json.RawMessage
}

func (ModuleStatus) notification() {}
func (DriverStatus) notification() {}
func (NeedRestart) notification()  {}
func (NeedReboot) notification()   {}
func (Monitoring) notification()   {}

// Decode turns a raw push message into a Notification.
func Decode(msg types.PushMessage) (Notification, error) {
	switch msg.Event {
	case EventModuleInstall:
		return decodeModule(msg, lifecycle.KindInstall)
	case EventModuleUpdate:
		return decodeModule(msg, lifecycle.KindUpdate)
	case EventModuleUninstall:
		return decodeModule(msg, lifecycle.KindUninstall)
	case EventCleepUpdate:
		n, err := decodeModule(msg, lifecycle.KindUpdate)
		if err != nil {
			return nil, err
		}
		ms := n.(ModuleStatus)
		ms.Event.Module = lifecycle.CleepModule
		return ms, nil
	case EventDriverInstall:
		return decodeDriver(msg, lifecycle.KindInstall)
	case EventDriverUninstall:
		return decodeDriver(msg, lifecycle.KindUninstall)
	case EventCleepNeedRestart:
		return NeedRestart{}, nil
	case EventMonitoringCPU:
		return Monitoring{Metric: "cpu", Data: msg.Params}, nil
	case EventMonitoringMem:
		return Monitoring{Metric: "memory", Data: msg.Params}, nil
	}
	if strings.HasSuffix(msg.Event, suffixNeedReboot) {
		return NeedReboot{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnhandled, msg.Event)
}

func decodeModule(msg types.PushMessage, kind lifecycle.Kind) (Notification, error) {
	var p types.ModuleStatusParams
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", msg.Event, err)
	}
	status, err := lifecycle.ParseStatus(p.Status)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", msg.Event, err)
	}
	if msg.Event != EventCleepUpdate && p.Module == "" {
		return nil, fmt.Errorf("decode %s: missing module", msg.Event)
	}
	return ModuleStatus{Event: lifecycle.StatusEvent{
		Module:        p.Module,
		Kind:          kind,
		Status:        status,
		UpdateProcess: p.UpdateProcess,
	}}, nil
}

func decodeDriver(msg types.PushMessage, kind lifecycle.Kind) (Notification, error) {
	var p types.DriverStatusParams
	if err := json.Unmarshal(msg.Params, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", msg.Event, err)
	}
	if p.DriverType == "" || p.DriverName == "" {
		return nil, fmt.Errorf("decode %s: missing driver", msg.Event)
	}
	running := p.Installing
	if kind == lifecycle.KindUninstall {
		running = p.Uninstalling
	}
	ev := lifecycle.DriverEvent{
		Key:     lifecycle.DriverKey{Type: p.DriverType, Name: p.DriverName},
		Kind:    kind,
		Running: running != nil && *running,
	}
	if p.Success != nil {
		ev.Success = *p.Success
	}
	if p.Message != nil {
		ev.Message = *p.Message
	}
	return DriverStatus{Event: ev}, nil
}

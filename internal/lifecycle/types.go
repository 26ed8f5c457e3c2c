package lifecycle

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the operation a status notification refers to.
type Kind int

const (
	KindInstall Kind = iota + 1
	KindUpdate
	KindUninstall
)

func (k Kind) String() string {
	switch k {
	case KindInstall:
		return "install"
	case KindUpdate:
		return "update"
	case KindUninstall:
		return "uninstall"
	default:
		return ""
	}
}

// Phase is the lifecycle phase of a module.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseFailed     Phase = "failed"
	PhaseSucceeded  Phase = "succeeded"
	PhaseCanceled   Phase = "canceled"
)

// Terminal reports whether p ends an operation.
func (p Phase) Terminal() bool {
	return p == PhaseFailed || p == PhaseSucceeded || p == PhaseCanceled
}

// Status is the wire status code carried by lifecycle notifications.
type Status int

const (
	StatusNone       Status = 0
	StatusProcessing Status = 1
	StatusError      Status = 2
	StatusDone       Status = 3
	StatusCanceled   Status = 4
)

// ErrUnknownStatus is returned when a status code is outside 0..4.
var ErrUnknownStatus = errors.New("unknown lifecycle status")

// ParseStatus validates a wire status code.
func ParseStatus(code int) (Status, error) {
	if code < int(StatusNone) || code > int(StatusCanceled) {
		return StatusNone, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	return Status(code), nil
}

// StatusEvent is one decoded lifecycle notification.
type StatusEvent struct {
	Module string
	Kind   Kind
	Status Status
	// UpdateProcess marks an install emitted as part of an update.
	UpdateProcess bool
}

// State is the tracked lifecycle of one module.
type State struct {
	Module  string
	Phase   Phase
	Kind    Kind
	Pending bool
	Updated time.Time
}

// Effect is the side effect the caller must run after a transition.
type Effect int

const (
	EffectNone Effect = iota
	// EffectReloadReportFailure: reload configuration, then report the failure.
	EffectReloadReportFailure
	// EffectReloadMarkPending: reload configuration, then mark the module pending.
	EffectReloadMarkPending
	// EffectReloadDrivers: reload the driver inventory.
	EffectReloadDrivers
)

func (e Effect) String() string {
	switch e {
	case EffectReloadReportFailure:
		return "reload_report_failure"
	case EffectReloadMarkPending:
		return "reload_mark_pending"
	case EffectReloadDrivers:
		return "reload_drivers"
	default:
		return "none"
	}
}

// Transition describes what Apply did.
type Transition struct {
	From    State
	To      State
	Changed bool
	// Reason is set when the event was dropped.
	Reason string
}

package lifecycle

import (
	"sort"
	"sync"
	"time"

	"cleepadm/pkg/types"
)

// DriverKey identifies a driver.
type DriverKey struct {
	Type string
	Name string
}

// DriverEvent is one decoded system.driver.install/uninstall notification.
type DriverEvent struct {
	Key  DriverKey
	Kind Kind // KindInstall or KindUninstall
	// Running is true while the backend still works on the operation.
	Running bool
	Success bool
	Message string
}

// DriverState is the tracked lifecycle of one driver.
type DriverState struct {
	Key     DriverKey
	Phase   Phase
	Kind    Kind
	Message string
	Updated time.Time
}

// DriverTracker is the driver counterpart of Tracker: no update kind, no pending flag.
type DriverTracker struct {
	mu     sync.RWMutex
	states map[DriverKey]*DriverState
	now    func() time.Time
}

func NewDriverTracker() *DriverTracker {
	return &DriverTracker{states: make(map[DriverKey]*DriverState), now: time.Now}
}

// Apply applies ev. Terminal transitions ask for a driver inventory reload.
func (t *DriverTracker) Apply(ev DriverEvent) (DriverState, bool, Effect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[ev.Key]
	if !ok {
		st = &DriverState{Key: ev.Key, Phase: PhaseIdle}
		t.states[ev.Key] = st
	}

	phase, effect := PhaseProcessing, EffectNone
	switch {
	case ev.Running:
	case ev.Success:
		phase, effect = PhaseSucceeded, EffectReloadDrivers
	default:
		phase, effect = PhaseFailed, EffectReloadDrivers
	}
	if st.Phase == phase && st.Kind == ev.Kind {
		return *st, false, EffectNone
	}
	st.Phase = phase
	st.Kind = ev.Kind
	st.Message = ev.Message
	st.Updated = t.now()
	return *st, true, effect
}

// Seed materializes states for drivers listed in the inventory.
func (t *DriverTracker) Seed(drivers []types.DriverInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range drivers {
		k := DriverKey{Type: d.DriverType, Name: d.DriverName}
		if _, ok := t.states[k]; !ok {
			t.states[k] = &DriverState{Key: k, Phase: PhaseIdle}
		}
	}
}

// States returns copies of all driver states sorted by type then name.
func (t *DriverTracker) States() []DriverState {
	t.mu.RLock()
	out := make([]DriverState, 0, len(t.states))
	for _, st := range t.states {
		out = append(out, *st)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Type != out[j].Key.Type {
			return out[i].Key.Type < out[j].Key.Type
		}
		return out[i].Key.Name < out[j].Key.Name
	})
	return out
}

package lifecycle

import (
	"sort"
	"sync"
	"time"

	"cleepadm/pkg/types"
)

// CleepModule is the reserved name under which the platform self-update is tracked.
const CleepModule = "cleep"

// Tracker holds one State per module name and applies status events to it.
// Apply never performs I/O: side effects are returned to the caller, which runs
// them and then calls Complete.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]*State
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*State), now: time.Now}
}

// state returns the module state, creating it lazily. Caller holds mu.
func (t *Tracker) state(module string) *State {
	st, ok := t.states[module]
	if !ok {
		st = &State{Module: module, Phase: PhaseIdle}
		t.states[module] = st
	}
	return st
}

// Apply applies ev and returns the transition and the effect to run.
func (t *Tracker) Apply(ev StatusEvent) (Transition, Effect) {
	if ev.Module == "" {
		return Transition{Reason: "empty module name"}, EffectNone
	}
	if ev.Status == StatusNone {
		return Transition{Reason: "no-op status"}, EffectNone
	}
	if ev.Kind == KindInstall && ev.UpdateProcess {
		// tracked under the update already running
		return Transition{Reason: "install triggered by update"}, EffectNone
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.state(ev.Module)
	from := *st

	var (
		phase  Phase
		effect Effect
	)
	switch ev.Status {
	case StatusProcessing:
		phase = PhaseProcessing
	case StatusError:
		phase, effect = PhaseFailed, EffectReloadReportFailure
	case StatusDone:
		phase, effect = PhaseSucceeded, EffectReloadMarkPending
	case StatusCanceled:
		phase = PhaseCanceled
	default:
		return Transition{From: from, To: from, Reason: "unknown status"}, EffectNone
	}

	if st.Phase == phase && st.Kind == ev.Kind {
		return Transition{From: from, To: from, Reason: "duplicate"}, EffectNone
	}
	st.Phase = phase
	st.Kind = ev.Kind
	st.Updated = t.now()
	return Transition{From: from, To: *st, Changed: true}, effect
}

// Complete finishes a transition once its effect has run.
func (t *Tracker) Complete(module string, effect Effect) {
	if effect != EffectReloadMarkPending {
		return
	}
	t.mu.Lock()
	st := t.state(module)
	st.Pending = true
	t.mu.Unlock()
}

// Seed materializes states for modules seen in a configuration load. Existing
// states are left untouched.
func (t *Tracker) Seed(modules map[string]types.ModuleInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name := range modules {
		t.state(name)
	}
}

// ResetPending clears every pending flag. Called once the running process restarted.
func (t *Tracker) ResetPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, st := range t.states {
		st.Pending = false
	}
}

// Get returns a copy of the module state.
func (t *Tracker) Get(module string) (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.states[module]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// States returns copies of all states sorted by module name.
func (t *Tracker) States() []State {
	t.mu.RLock()
	out := make([]State, 0, len(t.states))
	for _, st := range t.states {
		out = append(out, *st)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

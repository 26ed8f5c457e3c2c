package advisory

import (
	"sync"
)

// Handle identifies an affordance registered on the toolbar.
type Handle string

// Toolbar displays affordances. AddButton must return a distinct handle per call.
type Toolbar interface {
	AddButton(label, icon string, action func()) Handle
	RemoveButton(h Handle)
}

// Flag is one of the advisory flags.
type Flag int

const (
	FlagRestart Flag = iota
	FlagReboot
)

func (f Flag) String() string {
	if f == FlagReboot {
		return "reboot"
	}
	return "restart"
}

// Change reports the flag transitions seen by one observation.
type Change struct {
	RestartRaised  bool
	RestartCleared bool
	RebootRaised   bool
	RebootCleared  bool
}

type flagState struct {
	observed bool
	handle   Handle
}

// Advisory keeps one toolbar affordance per raised flag. Reconciliation is
// keyed strictly off the previously observed flag value, never off whether a
// handle happens to be registered.
type Advisory struct {
	mu      sync.Mutex
	toolbar Toolbar
	flags   [2]flagState
	labels  [2]string
	actions [2]func()
}

// New builds an advisory. restart and reboot are the actions bound to the affordances.
func New(toolbar Toolbar, restart, reboot func()) *Advisory {
	return &Advisory{
		toolbar: toolbar,
		labels:  [2]string{"Restart to apply changes", "Reboot to apply changes"},
		actions: [2]func(){restart, reboot},
	}
}

// OnConfigObserved reconciles both flags against their previous values.
func (a *Advisory) OnConfigObserved(needsRestart, needsReboot bool) Change {
	a.mu.Lock()
	defer a.mu.Unlock()
	var c Change
	c.RestartRaised, c.RestartCleared = a.observe(FlagRestart, needsRestart)
	c.RebootRaised, c.RebootCleared = a.observe(FlagReboot, needsReboot)
	return c
}

// observe applies one flag value. Caller holds mu.
func (a *Advisory) observe(f Flag, value bool) (raised, cleared bool) {
	st := &a.flags[f]
	switch {
	case value && !st.observed:
		st.handle = a.toolbar.AddButton(a.labels[f], "restart", a.actions[f])
		st.observed = true
		return true, false
	case !value && st.observed:
		a.toolbar.RemoveButton(st.handle)
		st.handle = ""
		st.observed = false
		return false, true
	}
	return false, false
}

// Flags returns the last observed values.
func (a *Advisory) Flags() (needsRestart, needsReboot bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flags[FlagRestart].observed, a.flags[FlagReboot].observed
}

// Handle returns the handle held for a flag, empty when the flag is absent.
func (a *Advisory) Handle(f Flag) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flags[f].handle
}

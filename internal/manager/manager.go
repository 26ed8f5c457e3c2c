package manager

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cleepadm/internal/advisory"
	"cleepadm/internal/lifecycle"
	"cleepadm/internal/reconciler"
	"cleepadm/internal/rendering"
	"cleepadm/internal/rpc"
)

type Manager struct {
	mu    sync.RWMutex
	state State
	err   string
	// module name -> debug flag from get_modules_debug
	debug map[string]bool
	// last monitoring samples pushed by the backend
	cpu, memory json.RawMessage
	pushProbe   func() bool

	cmd      rpc.Commander
	log      zerolog.Logger
	tracker  *lifecycle.Tracker
	drivers  *lifecycle.DriverTracker
	registry *rendering.Registry
	recon    *reconciler.Reconciler
	advisory *advisory.Advisory
	toolbar  *advisory.MemoryToolbar

	pub   EventPublisher
	notes *MemoryPublisher

	inbox         chan job
	stopped       chan struct{}
	stopOnce      sync.Once
	reloadTimeout time.Duration
	startTime     time.Time
}

// New builds a manager with package defaults.
func New(cmd rpc.Commander, log zerolog.Logger) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(ManagerConfig{Commander: cmd, Logger: log})
}

// SetEventPublisher installs an additional event subscriber. nil resets to no-op.
// Events are always kept in the notifications buffer as well.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.pub = p
	m.mu.Unlock()
}

// SetPushProbe installs the function reporting whether the push channel is connected.
func (m *Manager) SetPushProbe(fn func() bool) {
	m.mu.Lock()
	m.pushProbe = fn
	m.mu.Unlock()
}

// Ready reports whether the initial configuration load succeeded.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady
}

func (m *Manager) publish(e Event) {
	m.notes.Publish(e)
	m.mu.RLock()
	p := m.pub
	m.mu.RUnlock()
	p.Publish(e)
}

func (m *Manager) setState(s State, err error) {
	m.mu.Lock()
	m.state = s
	if err != nil {
		m.err = err.Error()
	} else {
		m.err = ""
	}
	m.mu.Unlock()
}

// affordance binds an advisory button to a mutation running on a detached context.
func (m *Manager) affordance(fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.reloadTimeout)
		defer cancel()
		// send already published command_failed
		if err := fn(ctx); err != nil {
			m.log.Debug().Err(err).Msg("affordance action failed")
		}
	}
}

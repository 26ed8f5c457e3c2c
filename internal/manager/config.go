package manager

import (
	"time"

	"github.com/rs/zerolog"

	"cleepadm/internal/advisory"
	"cleepadm/internal/lifecycle"
	"cleepadm/internal/reconciler"
	"cleepadm/internal/rendering"
	"cleepadm/internal/rpc"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultInboxSize           = 64
	defaultNotificationsBuffer = 100
	defaultReloadTimeout       = 30 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Commander sends backend commands. Required.
	Commander rpc.Commander
	Logger    zerolog.Logger
	// LegacyRenderCommand selects set_event_not_rendered instead of set_event_renderable.
	LegacyRenderCommand bool
	InboxSize           int
	NotificationsBuffer int
	// ReloadTimeout bounds each configuration reload run by the loop.
	ReloadTimeout time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateStarting,
		cmd:       cfg.Commander,
		log:       cfg.Logger.With().Str("component", "manager").Logger(),
		tracker:   lifecycle.NewTracker(),
		drivers:   lifecycle.NewDriverTracker(),
		recon:     reconciler.New(cfg.Commander, cfg.Logger),
		toolbar:   advisory.NewMemoryToolbar(),
		pub:       noopPublisher{},
		debug:     map[string]bool{},
		stopped:   make(chan struct{}),
		startTime: time.Now(),
	}
	m.registry = rendering.NewRegistry(rendering.NewSetter(cfg.Commander, cfg.LegacyRenderCommand))
	m.advisory = advisory.New(m.toolbar, m.affordance(m.Restart), m.affordance(m.Reboot))

	// Apply defaults if unset
	if cfg.InboxSize <= 0 {
		m.inbox = make(chan job, defaultInboxSize)
	} else {
		m.inbox = make(chan job, cfg.InboxSize)
	}
	m.notes = NewMemoryPublisher(cfg.NotificationsBuffer)
	if cfg.ReloadTimeout <= 0 {
		m.reloadTimeout = defaultReloadTimeout
	} else {
		m.reloadTimeout = cfg.ReloadTimeout
	}
	return m
}

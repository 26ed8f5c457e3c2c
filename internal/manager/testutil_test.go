package manager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cleepadm/internal/rpc"
	"cleepadm/internal/rpc/rpctest"
	"cleepadm/pkg/types"
)

// backend is a fake platform backend with mutable system config and inventory.
type backend struct {
	*rpctest.Fake
	mu      sync.Mutex
	sys     types.SystemConfig
	modules map[string]types.ModuleInfo
	// gate, when set, blocks get_modules until it is closed
	gate        chan struct{}
	failModules bool
}

func newBackend() *backend {
	b := &backend{
		Fake: rpctest.NewFake(),
		sys:  types.SystemConfig{BackupDelay: 15, Version: "0.1.0"},
		modules: map[string]types.ModuleInfo{
			"system":  {Installed: true, Core: true},
			"weather": {Version: "1.0.0"},
		},
	}
	b.Handle("get_module_config", func(cmd rpc.Command) (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.sys, nil
	})
	b.Handle("get_modules", func(cmd rpc.Command) (any, error) {
		b.mu.Lock()
		gate, fail := b.gate, b.failModules
		b.mu.Unlock()
		if gate != nil {
			<-gate
		}
		if fail {
			return nil, &rpc.CommandError{Command: cmd.Name, Message: "inventory unavailable"}
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.modules, nil
	})
	b.Reply("get_drivers", []types.DriverInfo{{DriverType: "audio", DriverName: "hifiberry"}})
	b.Reply("get_events", map[string]types.EventInfo{
		"system.alert.memory": {Profiles: []string{"AlertProfile"}},
		"sensors.motion.on":   {Profiles: []string{"MotionProfile"}},
		"system.device.boot":  {Profiles: nil},
	})
	b.Reply("get_renderers", map[string][]string{
		"sms":     {"AlertProfile"},
		"display": {"AlertProfile", "MotionProfile"},
	})
	b.Reply("get_modules_debug", map[string]types.ModuleDebug{"weather": {Debug: true}})
	b.Handle("set_event_renderable", func(cmd rpc.Command) (any, error) {
		p := types.RenderingPair{
			Renderer: cmd.Params["renderer_name"].(string),
			Event:    cmd.Params["event_name"].(string),
		}
		renderable := cmd.Params["renderable"].(bool)
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []types.RenderingPair{}
		for _, q := range b.sys.EventsNotRenderable {
			if q != p {
				out = append(out, q)
			}
		}
		if !renderable {
			out = append(out, p)
		}
		b.sys.EventsNotRenderable = out
		return out, nil
	})
	return b
}

func (b *backend) setFlags(needRestart, needReboot bool) {
	b.mu.Lock()
	b.sys.NeedRestart = needRestart
	b.sys.NeedReboot = needReboot
	b.mu.Unlock()
}

// startManager runs a manager against b until the test ends.
func startManager(t *testing.T, b *backend) *Manager {
	t.Helper()
	m := NewWithConfig(ManagerConfig{Commander: b, Logger: zerolog.Nop(), ReloadTimeout: 2 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

// waitReady polls until the initial load finished.
func waitReady(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !m.Ready() {
		if time.Now().After(deadline) {
			t.Fatalf("manager not ready: %+v", m.Snapshot())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// barrier returns once every previously queued item has been handled.
func barrier(t *testing.T, m *Manager) {
	t.Helper()
	if err := m.do(testCtx(t), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("barrier: %v", err)
	}
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func notificationsNamed(m *Manager, name string) []types.Notification {
	var out []types.Notification
	for _, n := range m.Notifications().Notifications {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

func findModule(t *testing.T, m *Manager, name string) types.ModuleStatus {
	t.Helper()
	for _, ms := range m.Modules().Modules {
		if ms.Module == name {
			return ms
		}
	}
	t.Fatalf("module %q not listed", name)
	return types.ModuleStatus{}
}

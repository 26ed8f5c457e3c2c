package reconciler

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleepadm/internal/rpc"
	"cleepadm/internal/rpc/rpctest"
	"cleepadm/pkg/types"
)

func newFake() *rpctest.Fake {
	f := rpctest.NewFake()
	f.Handle("get_module_config", func(cmd rpc.Command) (any, error) {
		if cmd.To == SystemModule {
			return types.SystemConfig{NeedRestart: true, BackupDelay: 15,
				EventsNotRenderable: []types.RenderingPair{{Renderer: "sms", Event: "a"}}}, nil
		}
		return map[string]any{"city": "Paris"}, nil
	})
	f.Reply("get_modules", map[string]types.ModuleInfo{"weather": {Version: "1.0.0", Installed: true}})
	f.Reply("get_drivers", []types.DriverInfo{{DriverType: "audio", DriverName: "respeaker", Installed: true}})
	return f
}

func TestReload_All(t *testing.T) {
	f := newFake()
	r := New(f, zerolog.Nop())

	cfg, err := r.Reload(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.Revision)
	assert.True(t, cfg.System.NeedRestart)
	assert.Equal(t, "weather", cfg.Modules["weather"].Name)
	require.Len(t, cfg.Drivers, 1)
	assert.Same(t, cfg, r.Snapshot())
	assert.Equal(t, 1, f.Count("get_module_config"))
	assert.Equal(t, 1, f.Count("get_modules"))
	assert.Equal(t, 1, f.Count("get_drivers"))
}

func TestReload_ModuleScopeKeepsOtherSubtrees(t *testing.T) {
	f := newFake()
	r := New(f, zerolog.Nop())
	first, err := r.Reload(context.Background(), ScopeAll)
	require.NoError(t, err)

	second, err := r.Reload(context.Background(), ScopeModule("weather"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Revision)
	assert.JSONEq(t, `{"city":"Paris"}`, string(second.ModuleConfigs["weather"]))
	assert.Equal(t, first.System, second.System)
	assert.Equal(t, first.Modules, second.Modules)
	// previous snapshot untouched
	assert.NotContains(t, first.ModuleConfigs, "weather")
}

func TestReload_FailureKeepsSnapshot(t *testing.T) {
	f := newFake()
	r := New(f, zerolog.Nop())
	before, err := r.Reload(context.Background(), ScopeSystem)
	require.NoError(t, err)

	f.Fail("get_module_config", "boom")
	after, err := r.Reload(context.Background(), ScopeSystem)
	require.Error(t, err)
	assert.True(t, rpc.IsCommandError(err))
	assert.Same(t, before, after)
	assert.Same(t, before, r.Snapshot())
}

func TestScopeModule_SystemIsSystemScope(t *testing.T) {
	assert.Equal(t, ScopeSystem, ScopeModule(SystemModule))
	assert.True(t, ScopeAll.IncludesSystem())
	assert.False(t, ScopeDrivers.IncludesSystem())
	assert.Equal(t, "module:weather", ScopeModule("weather").String())
}

func TestReload_ConcurrentRevisionsAreMonotonic(t *testing.T) {
	r := New(newFake(), zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Reload(context.Background(), ScopeSystem)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(8), r.Snapshot().Revision)
}

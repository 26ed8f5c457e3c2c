package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cleepadm/internal/rpc"
	"cleepadm/pkg/types"
)

// SystemModule is the module holding the platform-wide configuration.
const SystemModule = "system"

// Scope selects which configuration subtree a reload replaces.
type Scope struct {
	kind   scopeKind
	module string
}

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeSystem
	scopeModule
	scopeDrivers
	scopeInventory
)

var (
	// ScopeAll reloads system config, module inventory and driver inventory.
	ScopeAll = Scope{kind: scopeAll}
	// ScopeSystem reloads the system module configuration.
	ScopeSystem = Scope{kind: scopeSystem}
	// ScopeDrivers reloads the driver inventory.
	ScopeDrivers = Scope{kind: scopeDrivers}
	// ScopeInventory reloads the module inventory.
	ScopeInventory = Scope{kind: scopeInventory}
)

// ScopeModule reloads one module configuration.
func ScopeModule(name string) Scope {
	if name == SystemModule {
		return ScopeSystem
	}
	return Scope{kind: scopeModule, module: name}
}

// IncludesSystem reports whether the scope replaces the system configuration.
func (s Scope) IncludesSystem() bool { return s.kind == scopeAll || s.kind == scopeSystem }

// IncludesModules reports whether the scope replaces the module inventory.
func (s Scope) IncludesModules() bool { return s.kind == scopeAll || s.kind == scopeInventory }

// IncludesDrivers reports whether the scope replaces the driver inventory.
func (s Scope) IncludesDrivers() bool { return s.kind == scopeAll || s.kind == scopeDrivers }

func (s Scope) String() string {
	switch s.kind {
	case scopeAll:
		return "all"
	case scopeSystem:
		return "system"
	case scopeModule:
		return "module:" + s.module
	case scopeDrivers:
		return "drivers"
	case scopeInventory:
		return "inventory"
	}
	return "unknown"
}

// Reconciler pulls authoritative configuration and publishes immutable snapshots.
// Reloads are serialized; Snapshot never observes a partial merge.
type Reconciler struct {
	cmd  rpc.Commander
	log  zerolog.Logger
	now  func() time.Time
	mu   sync.Mutex
	snap atomic.Pointer[types.MergedConfig]
}

func New(cmd rpc.Commander, log zerolog.Logger) *Reconciler {
	r := &Reconciler{cmd: cmd, log: log.With().Str("component", "reconciler").Logger(), now: time.Now}
	r.snap.Store(&types.MergedConfig{
		Modules:       map[string]types.ModuleInfo{},
		ModuleConfigs: map[string]json.RawMessage{},
	})
	return r
}

// Snapshot returns the current merged configuration. Callers must not mutate it.
func (r *Reconciler) Snapshot() *types.MergedConfig { return r.snap.Load() }

// fetched carries the subtrees pulled by one reload.
type fetched struct {
	system       *types.SystemConfig
	modules      map[string]types.ModuleInfo
	drivers      []types.DriverInfo
	moduleConfig json.RawMessage
}

// Reload pulls the scope's subtrees and swaps in a new snapshot.
func (r *Reconciler) Reload(ctx context.Context, scope Scope) (*types.MergedConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var f fetched
	g, gctx := errgroup.WithContext(ctx)
	if scope.IncludesSystem() {
		g.Go(func() error {
			sys, err := rpc.Call[types.SystemConfig](gctx, r.cmd, rpc.GetModuleConfig(SystemModule))
			if err != nil {
				return fmt.Errorf("system config: %w", err)
			}
			f.system = &sys
			return nil
		})
	}
	if scope.IncludesModules() {
		g.Go(func() error {
			mods, err := rpc.Call[map[string]types.ModuleInfo](gctx, r.cmd, rpc.GetModules())
			if err != nil {
				return fmt.Errorf("modules: %w", err)
			}
			if mods == nil {
				mods = map[string]types.ModuleInfo{}
			}
			for name, info := range mods {
				info.Name = name
				mods[name] = info
			}
			f.modules = mods
			return nil
		})
	}
	if scope.IncludesDrivers() {
		g.Go(func() error {
			drv, err := rpc.Call[[]types.DriverInfo](gctx, r.cmd, rpc.GetDrivers())
			if err != nil {
				return fmt.Errorf("drivers: %w", err)
			}
			f.drivers = drv
			return nil
		})
	}
	if scope.kind == scopeModule {
		g.Go(func() error {
			raw, err := r.cmd.Send(gctx, rpc.GetModuleConfig(scope.module))
			if err != nil {
				return fmt.Errorf("module %s config: %w", scope.module, err)
			}
			f.moduleConfig = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Warn().Str("scope", scope.String()).Err(err).Msg("reload failed")
		return r.Snapshot(), err
	}

	next := r.merge(r.Snapshot(), scope, f)
	r.snap.Store(next)
	r.log.Debug().Str("scope", scope.String()).Uint64("revision", next.Revision).Msg("config merged")
	return next, nil
}

// merge builds the next snapshot: affected subtrees are replaced outright,
// everything else is shared with the previous snapshot.
func (r *Reconciler) merge(prev *types.MergedConfig, scope Scope, f fetched) *types.MergedConfig {
	next := *prev
	next.Revision = prev.Revision + 1
	next.LoadedAt = r.now()
	if f.system != nil {
		next.System = *f.system
	}
	if f.modules != nil {
		next.Modules = f.modules
	}
	if scope.IncludesDrivers() {
		next.Drivers = f.drivers
	}
	if scope.kind == scopeModule {
		cfgs := maps.Clone(prev.ModuleConfigs)
		if cfgs == nil {
			cfgs = map[string]json.RawMessage{}
		}
		cfgs[scope.module] = f.moduleConfig
		next.ModuleConfigs = cfgs
	}
	return &next
}

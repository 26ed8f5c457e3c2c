package manager

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"cleepadm/internal/metrics"
	"cleepadm/internal/rendering"
	"cleepadm/internal/rpc"
	"cleepadm/pkg/types"
)

// LoadRenderings refetches events, renderers and module debug flags and
// rebuilds the eligible universe.
func (m *Manager) LoadRenderings(ctx context.Context) error {
	return m.do(ctx, m.loadRenderings)
}

// loadRenderings runs on the loop goroutine.
func (m *Manager) loadRenderings(ctx context.Context) error {
	var (
		events    map[string]types.EventInfo
		renderers map[string][]string
		debug     map[string]types.ModuleDebug
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = rpc.Call[map[string]types.EventInfo](gctx, m.cmd, rpc.GetEvents())
		return err
	})
	g.Go(func() (err error) {
		renderers, err = rpc.Call[map[string][]string](gctx, m.cmd, rpc.GetRenderers())
		return err
	})
	g.Go(func() (err error) {
		debug, err = rpc.Call[map[string]types.ModuleDebug](gctx, m.cmd, rpc.GetModulesDebug())
		return err
	})
	if err := g.Wait(); err != nil {
		m.log.Warn().Err(err).Msg("renderings load failed")
		m.publish(Event{Name: "renderings_failed", Level: LevelError, Message: "Unable to load renderings: " + err.Error()})
		return err
	}

	eligible := rendering.ComputeEligiblePairs(rendering.EventsFromWire(events), rendering.RenderersFromWire(renderers))
	suppressed := rendering.FromWire(m.recon.Snapshot().System.EventsNotRenderable)
	m.registry.Reset(eligible, suppressed)

	flags := make(map[string]bool, len(debug))
	for name, d := range debug {
		flags[name] = d.Debug
	}
	m.mu.Lock()
	m.debug = flags
	m.mu.Unlock()
	m.log.Debug().Int("eligible", len(eligible)).Int("suppressed", len(suppressed)).Msg("renderings loaded")
	return nil
}

// ToggleRendering flips the suppression of one (renderer, event) pair and
// returns the resulting value. It runs on the caller's goroutine; the
// registry arbitrates concurrent toggles of the same pair.
func (m *Manager) ToggleRendering(ctx context.Context, renderer, event string) (bool, error) {
	suppressed, err := m.registry.Toggle(ctx, renderer, event)
	switch {
	case errors.Is(err, rendering.ErrIneligiblePair):
		metrics.Toggle("rejected")
		return suppressed, err
	case err != nil:
		metrics.Toggle("error")
		m.log.Warn().Str("renderer", renderer).Str("event", event).Err(err).Msg("toggle failed")
		m.publish(Event{
			Name:    "toggle_failed",
			Level:   LevelError,
			Module:  renderer,
			Message: "Unable to change rendering of " + event + ": " + err.Error(),
		})
		return suppressed, err
	}
	metrics.Toggle("ok")
	return suppressed, nil
}

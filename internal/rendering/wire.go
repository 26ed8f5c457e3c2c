package rendering

import (
	"context"

	"cleepadm/internal/rpc"
	"cleepadm/pkg/types"
)

// Internally a pair is "suppressed". The backend has two historical wire
// variants with opposite polarity; each adapter below converts at the boundary.

// RenderableSetter speaks set_event_renderable (renderable = !suppressed).
type RenderableSetter struct {
	Cmd rpc.Commander
}

func (s RenderableSetter) SetSuppressed(ctx context.Context, p Pair, suppressed bool) ([]Pair, error) {
	out, err := rpc.Call[[]types.RenderingPair](ctx, s.Cmd, rpc.SetEventRenderable(p.Renderer, p.Event, !suppressed))
	if err != nil {
		return nil, err
	}
	return FromWire(out), nil
}

// NotRenderedSetter speaks the legacy set_event_not_rendered (disabled = suppressed).
type NotRenderedSetter struct {
	Cmd rpc.Commander
}

func (s NotRenderedSetter) SetSuppressed(ctx context.Context, p Pair, suppressed bool) ([]Pair, error) {
	out, err := rpc.Call[[]types.RenderingPair](ctx, s.Cmd, rpc.SetEventNotRendered(p.Renderer, p.Event, suppressed))
	if err != nil {
		return nil, err
	}
	return FromWire(out), nil
}

// NewSetter picks the wire variant.
func NewSetter(cmd rpc.Commander, legacy bool) Setter {
	if legacy {
		return NotRenderedSetter{Cmd: cmd}
	}
	return RenderableSetter{Cmd: cmd}
}

// FromWire converts backend pairs.
func FromWire(in []types.RenderingPair) []Pair {
	out := make([]Pair, 0, len(in))
	for _, p := range in {
		out = append(out, Pair{Renderer: p.Renderer, Event: p.Event})
	}
	return out
}

// EventsFromWire converts a get_events answer.
func EventsFromWire(in map[string]types.EventInfo) map[string]Event {
	out := make(map[string]Event, len(in))
	for name, ev := range in {
		out[name] = Event{Name: name, Profiles: ev.Profiles}
	}
	return out
}

// RenderersFromWire converts a get_renderers answer.
func RenderersFromWire(in map[string][]string) map[string]Renderer {
	out := make(map[string]Renderer, len(in))
	for name, profiles := range in {
		out[name] = Renderer{Name: name, Profiles: profiles}
	}
	return out
}

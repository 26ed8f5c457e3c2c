package rendering

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrIneligiblePair is returned when toggling a pair outside the eligible universe.
var ErrIneligiblePair = errors.New("pair is not eligible for suppression")

// Setter commits a suppression change to the backend and returns the
// backend's authoritative suppressed set.
type Setter interface {
	SetSuppressed(ctx context.Context, p Pair, suppressed bool) ([]Pair, error)
}

// Rendering is one eligible pair with its current suppression flag.
type Rendering struct {
	Pair
	Suppressed bool
}

// Registry tracks which eligible pairs are suppressed.
//
// Toggle flips a pair optimistically, then commits it through the Setter. The
// answer replaces the whole suppressed set. Pairs that still have a toggle in
// flight keep their local value so a late answer never undoes a newer flip.
type Registry struct {
	mu         sync.Mutex
	eligible   PairSet
	suppressed PairSet
	gen        map[Pair]uint64
	inflight   map[Pair]int
	setter     Setter
}

func NewRegistry(setter Setter) *Registry {
	return &Registry{
		eligible:   make(PairSet),
		suppressed: make(PairSet),
		gen:        make(map[Pair]uint64),
		inflight:   make(map[Pair]int),
		setter:     setter,
	}
}

// Reset installs a freshly computed eligible universe and the authoritative
// suppressed set. Suppressed pairs outside the universe are dropped.
func (r *Registry) Reset(eligible PairSet, suppressed []Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eligible = eligible.Clone()
	r.suppressed = r.merge(suppressed)
}

// Replace swaps in an authoritative suppressed set from a configuration reload.
func (r *Registry) Replace(suppressed []Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppressed = r.merge(suppressed)
}

// merge builds the next suppressed set from an authoritative answer. Caller holds mu.
func (r *Registry) merge(auth []Pair) PairSet {
	next := make(PairSet, len(auth))
	for _, p := range auth {
		if r.eligible.Has(p) {
			next.Add(p)
		}
	}
	for p, n := range r.inflight {
		// a Reset may have dropped the pair while its toggle was in flight
		if n <= 0 || !r.eligible.Has(p) {
			continue
		}
		if r.suppressed.Has(p) {
			next.Add(p)
		} else {
			next.Remove(p)
		}
	}
	return next
}

// IsSuppressed reports the current value for a pair.
func (r *Registry) IsSuppressed(renderer, event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed.Has(Pair{Renderer: renderer, Event: event})
}

// IsEligible reports whether the pair can be toggled.
func (r *Registry) IsEligible(renderer, event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eligible.Has(Pair{Renderer: renderer, Event: event})
}

// Toggle flips the pair and commits the change. On failure the flip is rolled
// back unless a newer toggle of the same pair already superseded it.
func (r *Registry) Toggle(ctx context.Context, renderer, event string) (bool, error) {
	p := Pair{Renderer: renderer, Event: event}

	r.mu.Lock()
	if !r.eligible.Has(p) {
		r.mu.Unlock()
		return false, fmt.Errorf("%w: %s/%s", ErrIneligiblePair, renderer, event)
	}
	prev := r.suppressed.Has(p)
	want := !prev
	r.set(p, want)
	r.gen[p]++
	g := r.gen[p]
	r.inflight[p]++
	r.mu.Unlock()

	auth, err := r.setter.SetSuppressed(ctx, p, want)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[p]--
	if r.inflight[p] <= 0 {
		delete(r.inflight, p)
	}
	if err != nil {
		if r.gen[p] == g && r.eligible.Has(p) {
			r.set(p, prev)
		}
		return prev, err
	}
	r.suppressed = r.merge(auth)
	return r.suppressed.Has(p), nil
}

// set writes one pair. Caller holds mu.
func (r *Registry) set(p Pair, suppressed bool) {
	if suppressed {
		r.suppressed.Add(p)
	} else {
		r.suppressed.Remove(p)
	}
}

// Renderings lists every eligible pair with its suppression flag.
func (r *Registry) Renderings() []Rendering {
	r.mu.Lock()
	defer r.mu.Unlock()
	pairs := r.eligible.Sorted()
	out := make([]Rendering, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Rendering{Pair: p, Suppressed: r.suppressed.Has(p)})
	}
	return out
}

// Suppressed returns the suppressed pairs, sorted.
func (r *Registry) Suppressed() []Pair {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed.Sorted()
}

package rendering

import "sort"

// Event is a backend event and the profiles it satisfies.
type Event struct {
	Name     string
	Profiles []string
}

// Renderer is a downstream consumer and the profiles it can render.
type Renderer struct {
	Name     string
	Profiles []string
}

// Pair identifies a (renderer, event) couple.
type Pair struct {
	Renderer string
	Event    string
}

// PairSet is a set of pairs.
type PairSet map[Pair]struct{}

func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

func (s PairSet) Add(p Pair) { s[p] = struct{}{} }

func (s PairSet) Remove(p Pair) { delete(s, p) }

// Clone returns an independent copy.
func (s PairSet) Clone() PairSet {
	out := make(PairSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Sorted returns the pairs ordered by renderer then event.
func (s PairSet) Sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Renderer != out[j].Renderer {
			return out[i].Renderer < out[j].Renderer
		}
		return out[i].Event < out[j].Event
	})
	return out
}

// ComputeEligiblePairs joins renderers and events on their shared profiles.
// Events are indexed by profile first so the join is linear in the number of
// profile declarations. A pair reachable through several profiles appears once.
func ComputeEligiblePairs(events map[string]Event, renderers map[string]Renderer) PairSet {
	byProfile := make(map[string][]string)
	for name, ev := range events {
		if ev.Name != "" {
			name = ev.Name
		}
		for _, profile := range ev.Profiles {
			byProfile[profile] = append(byProfile[profile], name)
		}
	}

	out := make(PairSet)
	for name, r := range renderers {
		if r.Name != "" {
			name = r.Name
		}
		for _, profile := range r.Profiles {
			for _, ev := range byProfile[profile] {
				out.Add(Pair{Renderer: name, Event: ev})
			}
		}
	}
	return out
}

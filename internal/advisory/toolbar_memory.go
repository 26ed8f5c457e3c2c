package advisory

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownHandle is returned when invoking a handle that is not registered.
var ErrUnknownHandle = errors.New("unknown affordance handle")

// Button is one registered affordance.
type Button struct {
	Handle Handle
	Label  string
	Icon   string
	seq    uint64
	action func()
	once   *sync.Once
}

// MemoryToolbar keeps affordances in memory for the HTTP layer to list and
// invoke. Each handle's action runs at most once.
type MemoryToolbar struct {
	mu      sync.Mutex
	buttons map[Handle]*Button
	seq     uint64
}

func NewMemoryToolbar() *MemoryToolbar {
	return &MemoryToolbar{buttons: make(map[Handle]*Button)}
}

func (t *MemoryToolbar) AddButton(label, icon string, action func()) Handle {
	h := Handle(uuid.NewString())
	t.mu.Lock()
	t.seq++
	t.buttons[h] = &Button{Handle: h, Label: label, Icon: icon, seq: t.seq, action: action, once: &sync.Once{}}
	t.mu.Unlock()
	return h
}

func (t *MemoryToolbar) RemoveButton(h Handle) {
	t.mu.Lock()
	delete(t.buttons, h)
	t.mu.Unlock()
}

// Buttons lists registered affordances in registration order.
func (t *MemoryToolbar) Buttons() []Button {
	t.mu.Lock()
	out := make([]Button, 0, len(t.buttons))
	for _, b := range t.buttons {
		out = append(out, *b)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Invoke runs the handle's action. Repeated invocations of the same handle are no-ops.
func (t *MemoryToolbar) Invoke(h Handle) error {
	t.mu.Lock()
	b, ok := t.buttons[h]
	t.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	if b.action != nil {
		b.once.Do(b.action)
	}
	return nil
}

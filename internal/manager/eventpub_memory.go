package manager

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cleepadm/pkg/types"
)

// MemoryPublisher keeps the most recent events in a bounded buffer. The HTTP
// layer reads it through Manager.Notifications.
type MemoryPublisher struct {
	mu     sync.Mutex
	max    int
	events []types.Notification
	now    func() time.Time
}

// NewMemoryPublisher keeps at most max events; max <= 0 uses the package default.
func NewMemoryPublisher(max int) *MemoryPublisher {
	if max <= 0 {
		max = defaultNotificationsBuffer
	}
	return &MemoryPublisher{max: max, now: time.Now}
}

func (p *MemoryPublisher) Publish(e Event) {
	n := types.Notification{
		ID:      uuid.NewString(),
		Level:   string(e.Level),
		Name:    e.Name,
		Module:  e.Module,
		Message: e.Message,
		Time:    p.now(),
	}
	p.mu.Lock()
	p.events = append(p.events, n)
	if over := len(p.events) - p.max; over > 0 {
		p.events = append(p.events[:0:0], p.events[over:]...)
	}
	p.mu.Unlock()
}

// Notifications returns the buffered events, oldest first.
func (p *MemoryPublisher) Notifications() []types.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Notification, len(p.events))
	copy(out, p.events)
	return out
}

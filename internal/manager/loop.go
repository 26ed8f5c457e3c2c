package manager

import (
	"context"

	"cleepadm/internal/push"
	"cleepadm/internal/reconciler"
)

// job runs on the loop goroutine with the loop's context.
type job func(ctx context.Context)

// Run performs the initial load, then consumes the inbox until ctx is done.
// It must be called exactly once.
func (m *Manager) Run(ctx context.Context) {
	defer m.stopOnce.Do(func() { close(m.stopped) })

	if err := m.initialLoad(ctx); err != nil {
		m.log.Error().Err(err).Msg("initial load failed")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-m.inbox:
			j(ctx)
		}
	}
}

func (m *Manager) initialLoad(ctx context.Context) error {
	_, err := m.reload(ctx, reconciler.ScopeAll)
	if err != nil && !m.Ready() {
		m.setState(StateError, err)
	}
	return err
}

// Enqueue queues a push notification. Notifications are handled in order.
// It blocks while the inbox is full.
func (m *Manager) Enqueue(n push.Notification) error {
	if m.isStopped() {
		return ErrNotRunning
	}
	select {
	case m.inbox <- func(ctx context.Context) { m.handle(ctx, n) }:
		return nil
	case <-m.stopped:
		return ErrNotRunning
	}
}

// do runs fn on the loop goroutine and waits for its result. It must not be
// called from the loop itself.
func (m *Manager) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.isStopped() {
		return ErrNotRunning
	}
	errc := make(chan error, 1)
	select {
	case m.inbox <- func(lctx context.Context) { errc <- fn(lctx) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrNotRunning
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrNotRunning
	}
}

func (m *Manager) isStopped() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

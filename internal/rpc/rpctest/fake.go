// Package rpctest provides an in-memory Commander for tests.
package rpctest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cleepadm/internal/rpc"
)

// HandlerFunc answers one command.
type HandlerFunc func(cmd rpc.Command) (any, error)

// Fake records every command and answers through per-command handlers.
// Commands without a handler return null data.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []rpc.Command
}

func NewFake() *Fake { return &Fake{handlers: make(map[string]HandlerFunc)} }

// Handle installs the handler for a command name.
func (f *Fake) Handle(name string, h HandlerFunc) {
	f.mu.Lock()
	f.handlers[name] = h
	f.mu.Unlock()
}

// Reply installs a handler that always returns v.
func (f *Fake) Reply(name string, v any) {
	f.Handle(name, func(rpc.Command) (any, error) { return v, nil })
}

// Fail installs a handler that always rejects the command.
func (f *Fake) Fail(name, msg string) {
	f.Handle(name, func(rpc.Command) (any, error) { return nil, &rpc.CommandError{Command: name, Message: msg} })
}

func (f *Fake) Send(ctx context.Context, cmd rpc.Command) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	h := f.handlers[cmd.Name]
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return json.RawMessage("null"), nil
	}
	v, err := h(cmd)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpctest: marshal %s reply: %w", cmd.Name, err)
	}
	return b, nil
}

// Calls returns a copy of every command sent so far.
func (f *Fake) Calls() []rpc.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]rpc.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many times the named command was sent.
func (f *Fake) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

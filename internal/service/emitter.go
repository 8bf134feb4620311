package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from wailsRuntime
// ─────────────────────────────────────────────────────────────

// EventEmitter pushes events to the frontend. The app layer delegates to
// wailsRuntime.EventsEmit; the standalone MCP server discards them.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter records emissions for tests. It is safe for concurrent use,
// since autosave emits from the scheduler goroutine.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.Events {
		if ev.Event == event {
			n++
		}
	}
	return n
}

// Last returns the most recent emission of event.
func (m *MockEmitter) Last(event string) (EmittedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Event == event {
			return m.Events[i], true
		}
	}
	return EmittedEvent{}, false
}

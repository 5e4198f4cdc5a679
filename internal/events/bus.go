package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for broadcasting lifecycle and
// log events inside the process.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers of its concrete type.
// Usage: bus.Publish(StepEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event's Publish is generic over the concrete type, so a
	// type switch dispatches each known event.
	switch e := ev.(type) {
	case StepEvent:
		event.Publish(b.dispatcher, e)
	case KillRequestedEvent:
		event.Publish(b.dispatcher, e)
	case ReactorRunningEvent:
		event.Publish(b.dispatcher, e)
	case ReactorStoppedEvent:
		event.Publish(b.dispatcher, e)
	case ChildExitedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes a handler function; its parameter type determines
// which events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e StepEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(StepEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(KillRequestedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ReactorRunningEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ReactorStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ChildExitedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel bridges callback-based subscriptions to a channel
// for select-loop consumers. Events are dropped when ch is full so
// publishers never block.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}

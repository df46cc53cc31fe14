package registry

import (
	"context"
)

// EventType identifies a handle lifecycle notification.
type EventType uint8

const (
	EventOpened EventType = iota
	EventReused
	EventReferenced
	EventReleased
	EventClosed
)

func (t EventType) String() string {
	switch t {
	case EventOpened:
		return "opened"
	case EventReused:
		return "reused"
	case EventReferenced:
		return "referenced"
	case EventReleased:
		return "released"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event represents a handle lifecycle event.
type Event struct {
	Handle     *Handle
	Identifier Identifier
	RefCount   int
	Type       EventType
}

// Observer receives notifications about handle lifecycle events.
// Events are delivered after the registry lock is released, so observers
// may call back into the registry.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
// Functions are not comparable, so Unsubscribe ignores an ObserverFunc.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Opener is the backend that constructs and destroys handle payloads.
type Opener interface {
	// Open constructs the payload for id. Errors are reported to the caller
	// of OpenShared as open errors; the registry does not retry.
	Open(ctx context.Context, id Identifier) (any, error)

	// Close releases a payload. It is called exactly once per payload.
	Close(payload any) error
}

// OpenerFuncs adapts a pair of functions to the Opener interface.
// A nil CloseFunc makes Close a no-op.
type OpenerFuncs struct {
	OpenFunc  func(ctx context.Context, id Identifier) (any, error)
	CloseFunc func(payload any) error
}

func (o OpenerFuncs) Open(ctx context.Context, id Identifier) (any, error) {
	return o.OpenFunc(ctx, id)
}

func (o OpenerFuncs) Close(payload any) error {
	if o.CloseFunc == nil {
		return nil
	}
	return o.CloseFunc(payload)
}

// Describer is optionally implemented by payloads to add detail to dumps.
type Describer interface {
	Describe() string
}

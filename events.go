package parsim

import "reflect"

// FrameCompleted is published once per finished frame by whichever
// unit performed the frame's final barrier reset.
type FrameCompleted struct {
	// Frame is the number of fully completed frames.
	Frame int64
	// PairCount is the number of collision pairs recorded this frame.
	PairCount int32
	// Saturated reports that the pair buffer hit capacity and pairs
	// were dropped.
	Saturated bool
}

// EventBus is a small type-keyed bus for engine telemetry. Subscribe
// during setup; Publish is read-only over the handler table and safe
// to call from any unit once the engine runs.
type EventBus struct {
	handlers map[reflect.Type][]any
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[reflect.Type][]any, 4)}
}

// Subscribe registers a handler for events of type T. Handlers run
// synchronously on the publishing unit's goroutine, in subscription
// order, so they must be quick and internally synchronized.
//
// Parameters:
//   - bus: The EventBus instance to subscribe to.
//   - handler: A function that takes a single argument of type T.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	bus.handlers[t] = append(bus.handlers[t], handler)
}

// Publish delivers an event of type T to every registered handler.
// Allocation-free once the handler table is built.
func Publish[T any](bus *EventBus, event T) {
	for _, h := range bus.handlers[reflect.TypeOf((*T)(nil)).Elem()] {
		h.(func(T))(event)
	}
}

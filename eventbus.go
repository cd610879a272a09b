package kensaku

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// registered in the EventBus. This value is fixed at 256.
const MaxEventTypes = 256

// EventBus delivers events to handlers subscribed by event type. Every World
// carries one and publishes its structural events on it; applications may
// publish their own event types on the same bus.
//
// Handlers run synchronously, in subscription order, on the publishing
// goroutine. An EventBus is not safe for concurrent use.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID int
}

// Subscribe registers handler to be called for every published event of type
// T.
//
// Parameters:
//   - bus: The EventBus instance to subscribe to.
//   - handler: A function that takes a single argument of type `T`.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.getEventTypeID(reflect.TypeFor[T]())
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish calls every handler subscribed to T with event. Handlers subscribed
// while the event is being delivered first see the next event.
//
// Parameters:
//   - bus: The EventBus instance to publish to.
//   - event: The event data of type `T` to be sent to handlers.
func Publish[T any](bus *EventBus, event T) {
	if id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]; ok {
		hs := bus.handlers[id]
		for _, h := range hs {
			h.(func(T))(event)
		}
	}
}

// HasSubscribers reports whether any handler is subscribed to T, letting
// publishers skip building events nobody reads.
func HasSubscribers[T any](bus *EventBus) bool {
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	return ok && len(bus.handlers[id]) > 0
}

// getEventTypeID retrieves or assigns an ID for the event type.
func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("kensaku: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}

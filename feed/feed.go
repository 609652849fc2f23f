// Package feed defines event types and the event envelope shared across
// the services of a restaking node.
package feed

// EventType is the type that defines the type of event.
type EventType int

// Event is the event that is sent with feed updates.
type Event struct {
	// Type is the type of event.
	Type EventType
	// Data is event-specific data.
	Data interface{}
}

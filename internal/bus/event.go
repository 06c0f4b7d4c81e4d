package bus

import "time"

// Event represents a domain event published on the bus.
//
// Kinds are dot-namespaced: "message.created", "message.deleted",
// "message.reacted", "conversation.created", "conversation.hidden",
// "conversation.theme_changed", "daemon.status_changed". Subscribers
// filter by prefix, so "message." matches every message event.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

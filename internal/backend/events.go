package backend

// Event is an engine lifecycle event: a name, the backend kind and optional
// key/values such as pid or url.
type Event struct {
	Name    string
	Backend string
	Fields  map[string]any
}

// EventPublisher receives lifecycle events. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

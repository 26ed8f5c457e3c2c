package manager

// Level is the severity of a user-facing event.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event is a user-facing message produced by the manager.
// Minimal and stable: name, level, module and message, plus optional fields.
type Event struct {
	Name    string
	Level   Level
	Module  string
	Message string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

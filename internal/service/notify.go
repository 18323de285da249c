package service

// Field is one key-value pair in a structured notice.
type Field struct {
	Name  string
	Value string
}

// Notice is a structured payload for a direct message. Rendering is the
// delivery collaborator's concern.
type Notice struct {
	Title  string
	Body   string
	Fields []Field
}

// Notifier delivers simulation events to players. Announce posts to the
// shared game channel; DirectMessage targets one player by their opaque
// reference id. Delivery is fire-and-forget: implementations log
// failures and never block or fail a tick.
// Implemented by the WebSocket hub.
type Notifier interface {
	Announce(text string)
	DirectMessage(playerID string, notice Notice)
}

// NoopNotifier is a no-op implementation for testing or when delivery is disabled.
type NoopNotifier struct{}

func (NoopNotifier) Announce(string)              {}
func (NoopNotifier) DirectMessage(string, Notice) {}

package push

import "context"

// Priority of a push message.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// Message is a fire-and-forget push notification. SlotKey is stable per
// (card, kind): delivery channels use it to replace a previous notification
// of the same kind rather than stack a new one.
type Message struct {
	SlotKey  string
	UserID   int64
	Title    string
	Body     string
	Subtext  string
	Priority Priority
}

// Sender delivers push messages. Implementations must not block on delivery
// confirmation; the dispatcher treats send errors as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

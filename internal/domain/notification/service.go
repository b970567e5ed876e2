package notification

import (
	"context"
	"time"
)

// EmitTimeout bounds one publish made after a write has committed.
const EmitTimeout = 2 * time.Second

// Notifier publishes a message to a room. Implementations may fail; callers
// on a committed write path must log and drop the error.
type Notifier interface {
	Emit(ctx context.Context, msg Message) error
}

// Subscriber hands out a live feed of messages for a set of rooms.
// The returned func releases the subscription and closes the channel.
type Subscriber interface {
	Subscribe(rooms ...string) (<-chan Message, func())
}

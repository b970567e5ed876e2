package sse

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	admin, closeAdmin := hub.Subscribe(notification.RoomAdmin)
	defer closeAdmin()
	alice, closeAlice := hub.Subscribe(notification.AccountRoom("alice"))
	defer closeAlice()

	require.NoError(t, hub.Emit(context.Background(), notification.Message{
		Room:  notification.RoomAdmin,
		Event: notification.EventCheckedIn,
	}))

	select {
	case msg := <-admin:
		assert.Equal(t, notification.EventCheckedIn, msg.Event)
	default:
		t.Fatal("admin subscriber did not receive the message")
	}

	select {
	case msg := <-alice:
		t.Fatalf("account room received %v", msg)
	default:
	}
}

func TestHub_CleanupClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("a", "b")
	assert.Equal(t, 1, hub.SubscriberCount("a"))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.SubscriberCount("a"))
	assert.Zero(t, hub.SubscriberCount("b"))
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("room")
	defer cleanup()

	for i := 0; i < bufferSize*2; i++ {
		assert.NoError(t, hub.Emit(context.Background(), notification.Message{Room: "room"}))
	}
}

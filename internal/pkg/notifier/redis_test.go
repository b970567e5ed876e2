package notifier

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	msg := notification.Message{
		Room:      notification.AccountRoom("acc-1"),
		Event:     notification.EventCheckedOut,
		Payload:   map[string]interface{}{"total_work_minutes": float64(540)},
		EmittedAt: at,
	}

	b, err := encode(msg)
	require.NoError(t, err)

	got, err := decode(string(b))
	require.NoError(t, err)
	assert.Equal(t, msg.Room, got.Room)
	assert.Equal(t, msg.Event, got.Event)
	assert.True(t, at.Equal(got.EmittedAt))
	assert.Equal(t, msg.Payload, got.Payload)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := decode("{not json")
	assert.Error(t, err)
}

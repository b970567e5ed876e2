package notification

import (
	"time"
)

// EventName identifies a real-time event pushed to subscribers.
type EventName string

const (
	EventCheckedIn    EventName = "attendance.checked_in"
	EventCheckedOut   EventName = "attendance.checked_out"
	EventBreakStarted EventName = "attendance.break_started"
	EventBreakEnded   EventName = "attendance.break_ended"
	EventCorrected    EventName = "attendance.corrected"
	EventOverridden   EventName = "attendance.overridden"
	EventLeaveApplied EventName = "leave.applied"
	EventLeaveDecided EventName = "leave.decided"
	EventLeaveCancel  EventName = "leave.cancelled"
)

// RoomAdmin receives every attendance and leave event.
const RoomAdmin = "admin"

// AccountRoom is the private room of one account.
func AccountRoom(accountID string) string {
	return "account:" + accountID
}

// Message is one event addressed to a room.
type Message struct {
	Room      string      `json:"room"`
	Event     EventName   `json:"event"`
	Payload   interface{} `json:"payload"`
	EmittedAt time.Time   `json:"emitted_at"`
}

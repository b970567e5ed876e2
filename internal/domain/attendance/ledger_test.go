package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-02-02 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(typ EventType, session, hhmm string) CheckEvent {
	return CheckEvent{ID: session + string(typ), Type: typ, SessionID: session, CheckedAt: at(hhmm)}
}

func TestDerive(t *testing.T) {
	t.Run("full day with one break", func(t *testing.T) {
		events := []CheckEvent{
			ev(EventCheckIn, "s1", "09:00"),
			ev(EventBreakStart, "b1", "13:00"),
			ev(EventBreakEnd, "b1", "13:30"),
			ev(EventCheckOut, "s1", "18:00"),
		}

		s := Derive(events)

		assert.Equal(t, 540, s.TotalWorkMinutes)
		assert.Equal(t, 30, s.TotalBreakMinutes)
		assert.Empty(t, s.OpenSessionID)
		assert.Empty(t, s.OpenBreakID)
		require.NotNil(t, s.FirstCheckIn)
		require.NotNil(t, s.LastCheckOut)
		assert.Equal(t, at("09:00"), *s.FirstCheckIn)
		assert.Equal(t, at("18:00"), *s.LastCheckOut)
		assert.Equal(t, StatusPresent, DeriveStatus(s.TotalWorkMinutes))
	})

	t.Run("short morning", func(t *testing.T) {
		s := Derive([]CheckEvent{ev(EventCheckIn, "s1", "09:00"), ev(EventCheckOut, "s1", "12:30")})

		assert.Equal(t, 210, s.TotalWorkMinutes)
		assert.Equal(t, StatusAbsent, DeriveStatus(s.TotalWorkMinutes))
	})

	t.Run("open session does not count", func(t *testing.T) {
		s := Derive([]CheckEvent{
			ev(EventCheckIn, "s1", "08:00"),
			ev(EventCheckOut, "s1", "10:00"),
			ev(EventCheckIn, "s2", "11:00"),
		})

		assert.Equal(t, 120, s.TotalWorkMinutes)
		assert.Equal(t, "s2", s.OpenSessionID)
		assert.Equal(t, at("10:00"), *s.LastCheckOut)
	})

	t.Run("order of input does not matter", func(t *testing.T) {
		forward := []CheckEvent{
			ev(EventCheckIn, "s1", "08:00"),
			ev(EventCheckOut, "s1", "10:15"),
			ev(EventCheckIn, "s2", "11:00"),
			ev(EventCheckOut, "s2", "15:45"),
		}
		reversed := []CheckEvent{forward[3], forward[2], forward[1], forward[0]}

		assert.Equal(t, Derive(forward), Derive(reversed))
		assert.Equal(t, 135+285, Derive(forward).TotalWorkMinutes)
	})

	t.Run("partial minutes are floored per session", func(t *testing.T) {
		in := ev(EventCheckIn, "s1", "09:00")
		out := ev(EventCheckOut, "s1", "09:00")
		out.CheckedAt = out.CheckedAt.Add(59*time.Minute + 59*time.Second)

		assert.Equal(t, 59, Derive([]CheckEvent{in, out}).TotalWorkMinutes)
	})

	t.Run("empty log", func(t *testing.T) {
		s := Derive(nil)

		assert.Zero(t, s.TotalWorkMinutes)
		assert.Nil(t, s.FirstCheckIn)
		assert.Nil(t, s.LastCheckOut)
	})
}

func TestSessionLedger(t *testing.T) {
	t.Run("first open session wins when inconsistent", func(t *testing.T) {
		l := BuildSessionLedger([]CheckEvent{
			ev(EventCheckIn, "late", "10:00"),
			ev(EventCheckIn, "early", "09:00"),
		})

		assert.Equal(t, "early", l.OpenSessionID())
		assert.Equal(t, 2, l.OpenSessionCount())
	})

	t.Run("ignores break events", func(t *testing.T) {
		l := BuildSessionLedger([]CheckEvent{
			ev(EventCheckIn, "s1", "09:00"),
			ev(EventBreakStart, "b1", "10:00"),
		})

		assert.Len(t, l.Sessions(), 1)
		_, ok := l.Get("b1")
		assert.False(t, ok)
	})

	t.Run("orphan checkout is not a session with minutes", func(t *testing.T) {
		l := BuildSessionLedger([]CheckEvent{ev(EventCheckOut, "ghost", "12:00")})

		s, ok := l.Get("ghost")
		require.True(t, ok)
		assert.False(t, s.IsOpen())
		assert.Zero(t, s.Minutes())
		assert.Empty(t, l.OpenSessionID())
	})
}

func TestBreakLedger(t *testing.T) {
	t.Run("pairs breaks within the open session", func(t *testing.T) {
		lunch := BreakLunch
		start := ev(EventBreakStart, "b1", "12:00")
		start.BreakType = &lunch

		l := BuildBreakLedger([]CheckEvent{
			ev(EventCheckIn, "s1", "09:00"),
			start,
			ev(EventBreakEnd, "b1", "12:45"),
			ev(EventBreakStart, "b2", "15:00"),
		})

		b1, ok := l.Get("b1")
		require.True(t, ok)
		assert.Equal(t, BreakLunch, b1.BreakType)
		assert.Equal(t, "s1", b1.WorkSessionID)
		assert.Equal(t, 45, b1.DurationMinutes)
		assert.False(t, b1.IsOpen)

		b2, ok := l.Get("b2")
		require.True(t, ok)
		assert.Equal(t, BreakOther, b2.BreakType)
		assert.True(t, b2.IsOpen)

		assert.Equal(t, "b2", l.OpenBreakID())
		assert.Equal(t, 45, l.TotalMinutes())
		assert.Len(t, l.Breaks(), 2)
	})

	t.Run("unended break of a closed session ends at its checkout", func(t *testing.T) {
		l := BuildBreakLedger([]CheckEvent{
			ev(EventCheckIn, "s1", "09:00"),
			ev(EventBreakStart, "b1", "10:00"),
			ev(EventCheckOut, "s1", "12:00"),
			ev(EventCheckIn, "s2", "13:00"),
			ev(EventBreakStart, "b2", "14:00"),
		})

		b1, ok := l.Get("b1")
		require.True(t, ok)
		assert.False(t, b1.IsOpen)
		assert.Equal(t, "s1", b1.WorkSessionID)
		assert.Equal(t, 120, b1.DurationMinutes)

		b2, ok := l.Get("b2")
		require.True(t, ok)
		assert.True(t, b2.IsOpen)
		assert.Equal(t, "s2", b2.WorkSessionID)
		assert.Equal(t, "b2", l.OpenBreakID())
	})

	t.Run("nothing is open once every session is closed", func(t *testing.T) {
		l := BuildBreakLedger([]CheckEvent{
			ev(EventCheckIn, "s1", "09:00"),
			ev(EventBreakStart, "b1", "10:00"),
			ev(EventCheckOut, "s1", "12:00"),
		})

		assert.Empty(t, l.OpenBreakID())
		assert.Equal(t, 120, l.TotalMinutes())
	})

	t.Run("break outside any session has no time", func(t *testing.T) {
		l := BuildBreakLedger([]CheckEvent{
			ev(EventBreakStart, "b1", "08:00"),
			ev(EventCheckIn, "s1", "09:00"),
		})

		b1, ok := l.Get("b1")
		require.True(t, ok)
		assert.False(t, b1.IsOpen)
		assert.Empty(t, b1.WorkSessionID)
		assert.Zero(t, b1.DurationMinutes)
		assert.Empty(t, l.OpenBreakID())
	})
}

func TestDerive_StaleBreakIsNotReopened(t *testing.T) {
	s := Derive([]CheckEvent{
		ev(EventCheckIn, "s1", "09:00"),
		ev(EventBreakStart, "b1", "10:00"),
		ev(EventCheckOut, "s1", "12:00"),
		ev(EventCheckIn, "s2", "13:00"),
		ev(EventBreakStart, "b2", "14:00"),
		ev(EventBreakEnd, "b2", "14:15"),
	})

	assert.Empty(t, s.OpenBreakID)
	assert.Equal(t, "s2", s.OpenSessionID)
	assert.Equal(t, 135, s.TotalBreakMinutes)
}

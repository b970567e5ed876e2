package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDay(t *testing.T) {
	d := NewDay("acc-1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Sunday", d.Day)
	assert.True(t, d.IsSunday)
	assert.Equal(t, StatusAbsent, d.Status)
	assert.Equal(t, SourceDerived, d.StatusSource)
}

func TestDay_IncrementalMatchesReplay(t *testing.T) {
	events := []CheckEvent{
		ev(EventCheckIn, "s1", "09:00"),
		ev(EventBreakStart, "b1", "13:00"),
		ev(EventBreakEnd, "b1", "13:30"),
		ev(EventCheckOut, "s1", "18:00"),
	}

	d := NewDay("acc-1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	d.OpenSession(at("09:00"))
	d.OpenBreak()
	d.CloseBreak(30)
	d.CloseSession(at("18:00"), 540)

	assert.NoError(t, d.CheckInvariants(events))

	replayed := NewDay("acc-1", d.Date)
	replayed.ApplySummary(Derive(events))

	assert.Equal(t, d.TotalWorkMinutes, replayed.TotalWorkMinutes)
	assert.Equal(t, d.TotalBreakMinutes, replayed.TotalBreakMinutes)
	assert.Equal(t, d.Status, replayed.Status)
	assert.Equal(t, d.HasOpenSession, replayed.HasOpenSession)
	assert.Equal(t, d.FirstCheckIn, replayed.FirstCheckIn)
	assert.Equal(t, d.LastCheckOut, replayed.LastCheckOut)
}

func TestDay_LeaveStatusYieldsToBetterWork(t *testing.T) {
	t.Run("full day of work replaces a half-day leave", func(t *testing.T) {
		d := NewDay("acc-1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		d.ApplyLeave(StatusHalfDay, "approved leave")

		d.OpenSession(at("09:00"))
		d.CloseSession(at("18:00"), 540)

		assert.Equal(t, StatusPresent, d.Status)
		assert.Equal(t, SourceDerived, d.StatusSource)
		assert.Equal(t, 540, d.TotalWorkMinutes)
	})

	t.Run("less work keeps the leave status", func(t *testing.T) {
		d := NewDay("acc-1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		d.ApplyLeave(StatusHalfDay, "approved leave")

		d.OpenSession(at("09:00"))
		d.CloseSession(at("10:00"), 60)

		assert.Equal(t, StatusHalfDay, d.Status)
		assert.Equal(t, SourceLeave, d.StatusSource)
	})

	t.Run("replay without a minute change keeps the leave", func(t *testing.T) {
		d := NewDay("acc-1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		d.TotalWorkMinutes = 540
		d.ApplyLeave(StatusAbsent, "approved leave")

		d.ApplySummary(Summary{TotalWorkMinutes: 540})

		assert.Equal(t, StatusAbsent, d.Status)
		assert.Equal(t, SourceLeave, d.StatusSource)
	})
}

func TestDay_OverrideSurvivesMinuteChanges(t *testing.T) {
	d := NewDay("acc-1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	half := StatusHalfDay
	d.Override(&half, nil, "admin-1")

	d.OpenSession(at("09:00"))
	d.CloseSession(at("18:00"), 540)

	assert.Equal(t, StatusHalfDay, d.Status)
	assert.Equal(t, SourceOverride, d.StatusSource)

	d.ApplySummary(Summary{})

	assert.Equal(t, StatusHalfDay, d.Status)
	assert.Equal(t, SourceOverride, d.StatusSource)
	assert.Zero(t, d.TotalWorkMinutes)
}

func TestDay_CheckInvariants(t *testing.T) {
	events := []CheckEvent{ev(EventCheckIn, "s1", "09:00")}

	t.Run("open break without session", func(t *testing.T) {
		d := NewDay("acc-1", time.Time{})
		d.HasOpenBreak = true
		assert.ErrorIs(t, d.CheckInvariants(nil), ErrInvariantViolation)
	})

	t.Run("flag disagrees with log", func(t *testing.T) {
		d := NewDay("acc-1", time.Time{})
		assert.ErrorIs(t, d.CheckInvariants(events), ErrInvariantViolation)

		d.OpenSession(at("09:00"))
		assert.NoError(t, d.CheckInvariants(events))
	})

	t.Run("stale derived status", func(t *testing.T) {
		d := NewDay("acc-1", time.Time{})
		d.Status = StatusPresent
		assert.ErrorIs(t, d.CheckInvariants(nil), ErrInvariantViolation)
	})
}

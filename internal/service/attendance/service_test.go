package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountID = "0190a6f4-7c1e-7a3b-8e2f-000000000001"

type testClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *testClock) Set(hhmm string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := time.Parse("2006-01-02 15:04", "2026-02-02 "+hhmm)
	if err != nil {
		panic(err)
	}
	c.at = t
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
	err      error
}

func (n *recordingNotifier) Emit(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) events() []notification.EventName {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.EventName
	for _, m := range n.messages {
		if m.Room == notification.RoomAdmin {
			out = append(out, m.Event)
		}
	}
	return out
}

type fixture struct {
	store    *memory.Store
	clock    *testClock
	notifier *recordingNotifier
	deps     Dependencies
	tracker  attendance.TrackerService
	admin    attendance.CorrectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{}
	clock.Set("09:00")
	notifier := &recordingNotifier{}

	deps := Dependencies{
		Transactor: store,
		Days:       memory.NewDayRepository(store),
		Events:     memory.NewCheckEventRepository(store),
		Profiles:   memory.NewProfileRepository(store),
		Notifier:   notifier,
		Clock:      clock,
		Location:   time.UTC,
	}

	return &fixture{
		store:    store,
		clock:    clock,
		notifier: notifier,
		deps:     deps,
		tracker:  NewTrackerService(deps),
		admin:    NewCorrectionService(deps),
	}
}

func (f *fixture) checkIn(t *testing.T, at string) attendance.TrackResponse {
	t.Helper()
	f.clock.Set(at)
	resp, err := f.tracker.CheckIn(context.Background(), attendance.CheckInRequest{AccountID: accountID})
	require.NoError(t, err)
	return resp
}

func (f *fixture) checkOut(t *testing.T, at string) attendance.TrackResponse {
	t.Helper()
	f.clock.Set(at)
	resp, err := f.tracker.CheckOut(context.Background(), attendance.CheckOutRequest{AccountID: accountID})
	require.NoError(t, err)
	return resp
}

func (f *fixture) startBreak(t *testing.T, at string) attendance.TrackResponse {
	t.Helper()
	f.clock.Set(at)
	resp, err := f.tracker.StartBreak(context.Background(), attendance.BreakStartRequest{AccountID: accountID, BreakType: "lunch"})
	require.NoError(t, err)
	return resp
}

func (f *fixture) endBreak(t *testing.T, at string) attendance.TrackResponse {
	t.Helper()
	f.clock.Set(at)
	resp, err := f.tracker.EndBreak(context.Background(), attendance.BreakEndRequest{AccountID: accountID})
	require.NoError(t, err)
	return resp
}

func TestTracker_FullDayWithBreak(t *testing.T) {
	f := newFixture(t)

	f.checkIn(t, "09:00")
	f.startBreak(t, "13:00")
	f.endBreak(t, "13:30")
	resp := f.checkOut(t, "18:00")

	day := resp.Attendance
	assert.Equal(t, 540, day.TotalWorkMinutes)
	assert.Equal(t, 30, day.TotalBreakMinutes)
	assert.Equal(t, "PRESENT", day.Status)
	assert.Equal(t, "DERIVED", day.StatusSource)
	assert.Equal(t, "9", day.WorkedHours.String())
	assert.Equal(t, "0.5", day.BreakHours.String())
	assert.False(t, day.HasOpenSession)
	assert.False(t, day.HasOpenBreak)
	require.NotNil(t, day.FirstCheckIn)
	assert.Equal(t, "2026-02-02T09:00:00Z", *day.FirstCheckIn)
	assert.Equal(t, "2026-02-02T18:00:00Z", *day.LastCheckOut)
	assert.Equal(t, "Monday", day.Day)

	profile, err := f.deps.Profiles.GetByAccountID(context.Background(), accountID)
	require.NoError(t, err)
	assert.False(t, profile.IsAvailable)

	assert.Equal(t, []notification.EventName{
		notification.EventCheckedIn,
		notification.EventBreakStarted,
		notification.EventBreakEnded,
		notification.EventCheckedOut,
	}, f.notifier.events())
}

func TestTracker_ShortMorningIsAbsent(t *testing.T) {
	f := newFixture(t)

	f.checkIn(t, "09:00")
	resp := f.checkOut(t, "12:30")

	assert.Equal(t, 210, resp.Attendance.TotalWorkMinutes)
	assert.Equal(t, "ABSENT", resp.Attendance.Status)
}

func TestTracker_MultipleSessionsAccumulate(t *testing.T) {
	f := newFixture(t)

	f.checkIn(t, "08:00")
	f.checkOut(t, "10:00")
	first := f.checkIn(t, "11:00")
	resp := f.checkOut(t, "13:00")

	assert.Equal(t, 240, resp.Attendance.TotalWorkMinutes)
	assert.Equal(t, "HALF_DAY", resp.Attendance.Status)
	assert.Equal(t, first.Event.SessionID, resp.Event.SessionID)
	assert.Equal(t, "2026-02-02T08:00:00Z", *resp.Attendance.FirstCheckIn)
}

func TestTracker_StateMachineErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("double check-in", func(t *testing.T) {
		f := newFixture(t)
		f.checkIn(t, "09:00")

		f.clock.Set("09:01")
		_, err := f.tracker.CheckIn(ctx, attendance.CheckInRequest{AccountID: accountID})

		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("check-out without a day", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.tracker.CheckOut(ctx, attendance.CheckOutRequest{AccountID: accountID})

		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("check-out twice", func(t *testing.T) {
		f := newFixture(t)
		f.checkIn(t, "09:00")
		f.checkOut(t, "10:00")

		_, err := f.tracker.CheckOut(ctx, attendance.CheckOutRequest{AccountID: accountID})

		assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
	})

	t.Run("break without open session", func(t *testing.T) {
		f := newFixture(t)
		f.checkIn(t, "09:00")
		f.checkOut(t, "10:00")

		_, err := f.tracker.StartBreak(ctx, attendance.BreakStartRequest{AccountID: accountID})

		assert.ErrorIs(t, err, attendance.ErrBreakOutsideWork)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("nested break", func(t *testing.T) {
		f := newFixture(t)
		f.checkIn(t, "09:00")
		f.startBreak(t, "10:00")

		_, err := f.tracker.StartBreak(ctx, attendance.BreakStartRequest{AccountID: accountID})

		assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)
	})

	t.Run("end break without break", func(t *testing.T) {
		f := newFixture(t)
		f.checkIn(t, "09:00")

		_, err := f.tracker.EndBreak(ctx, attendance.BreakEndRequest{AccountID: accountID})

		assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)
	})

	t.Run("end break without a day", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.tracker.EndBreak(ctx, attendance.BreakEndRequest{AccountID: accountID})

		assert.ErrorIs(t, err, attendance.ErrDayNotFound)
	})

	t.Run("invalid break type", func(t *testing.T) {
		f := newFixture(t)
		f.checkIn(t, "09:00")

		_, err := f.tracker.StartBreak(ctx, attendance.BreakStartRequest{AccountID: accountID, BreakType: "nap"})

		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestTracker_CheckOutClosesOpenBreak(t *testing.T) {
	f := newFixture(t)

	f.checkIn(t, "09:00")
	f.startBreak(t, "12:00")
	resp := f.checkOut(t, "12:45")

	assert.Equal(t, 225, resp.Attendance.TotalWorkMinutes)
	assert.Equal(t, 45, resp.Attendance.TotalBreakMinutes)
	assert.False(t, resp.Attendance.HasOpenBreak)

	detail, err := f.admin.GetAttendance(context.Background(), resp.Attendance.ID)
	require.NoError(t, err)
	require.Len(t, detail.Breaks, 1)
	assert.Equal(t, "LUNCH", detail.Breaks[0].BreakType)
	assert.False(t, detail.Breaks[0].IsOpen)
}

func TestTracker_WFHFromFirstCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wfh := true

	_, err := f.tracker.CheckIn(ctx, attendance.CheckInRequest{AccountID: accountID, IsWFH: &wfh})
	require.NoError(t, err)
	f.checkOut(t, "10:00")

	office := false
	f.clock.Set("11:00")
	resp, err := f.tracker.CheckIn(ctx, attendance.CheckInRequest{AccountID: accountID, IsWFH: &office})
	require.NoError(t, err)

	require.NotNil(t, resp.Attendance.IsWFH)
	assert.True(t, *resp.Attendance.IsWFH)
}

func TestTracker_DayKeyUsesLocation(t *testing.T) {
	f := newFixture(t)
	f.deps.Location = time.FixedZone("WIB", 7*60*60)
	tracker := NewTrackerService(f.deps)

	f.clock.at = time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)
	resp, err := tracker.CheckIn(context.Background(), attendance.CheckInRequest{AccountID: accountID})

	require.NoError(t, err)
	assert.Equal(t, "2026-02-02", resp.Attendance.Date)
	assert.Equal(t, "2026-02-02", resp.Event.Date)
}

func TestTracker_ConcurrentCheckInsOpenOneSession(t *testing.T) {
	f := newFixture(t)
	const workers = 16

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tracker.CheckIn(context.Background(), attendance.CheckInRequest{AccountID: accountID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, succeeded)

	today, err := f.tracker.GetTodayStatus(context.Background(), accountID)
	require.NoError(t, err)
	assert.Len(t, today.Sessions, 1)
}

// racingDays hides the existing row from the first lookup, the way a
// concurrent transaction that committed in between would.
type racingDays struct {
	attendance.DayRepository
	hidden bool
}

func (r *racingDays) GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (attendance.Day, error) {
	if !r.hidden {
		r.hidden = true
		return attendance.Day{}, attendance.ErrDayNotFound
	}
	return r.DayRepository.GetByAccountAndDate(ctx, accountID, date)
}

func TestTracker_CreateRaceRetriesAsUpdate(t *testing.T) {
	f := newFixture(t)
	f.checkIn(t, "08:00")
	f.checkOut(t, "09:00")

	deps := f.deps
	deps.Days = &racingDays{DayRepository: f.deps.Days}
	tracker := NewTrackerService(deps)

	f.clock.Set("10:00")
	resp, err := tracker.CheckIn(context.Background(), attendance.CheckInRequest{AccountID: accountID})

	require.NoError(t, err)
	assert.True(t, resp.Attendance.HasOpenSession)
	assert.Equal(t, 60, resp.Attendance.TotalWorkMinutes)
}

func TestTracker_NotifierFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("redis down")

	resp := f.checkIn(t, "09:00")

	assert.True(t, resp.Attendance.HasOpenSession)
	assert.Len(t, f.notifier.messages, 2)
	assert.Equal(t, notification.AccountRoom(accountID), f.notifier.messages[1].Room)
}

type stalledNotifier struct {
	calls int
}

func (n *stalledNotifier) Emit(ctx context.Context, _ notification.Message) error {
	n.calls++
	<-ctx.Done()
	return ctx.Err()
}

func TestTracker_StalledNotifierIsBounded(t *testing.T) {
	f := newFixture(t)
	stalled := &stalledNotifier{}
	f.deps.Notifier = stalled
	f.deps.EmitTimeout = 20 * time.Millisecond
	f.tracker = NewTrackerService(f.deps)

	started := time.Now()
	resp := f.checkIn(t, "09:00")

	assert.True(t, resp.Attendance.HasOpenSession)
	assert.Equal(t, 2, stalled.calls)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestTracker_GetTodayStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.tracker.GetTodayStatus(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, empty.Attendance)
	assert.True(t, empty.CanCheckIn)
	assert.False(t, empty.CanCheckOut)

	in := f.checkIn(t, "09:00")
	f.startBreak(t, "10:00")

	today, err := f.tracker.GetTodayStatus(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-02", today.Date)
	assert.False(t, today.CanCheckIn)
	assert.True(t, today.CanCheckOut)
	assert.False(t, today.CanStartBreak)
	assert.True(t, today.CanEndBreak)
	require.NotNil(t, today.OpenSessionID)
	assert.Equal(t, in.Event.SessionID, *today.OpenSessionID)
	assert.NotNil(t, today.OpenBreakID)
	assert.Len(t, today.Events, 2)
}

func TestTracker_GetHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, date := range []time.Time{
		time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
	} {
		_, err := f.deps.Days.Create(ctx, attendance.NewDay(accountID, date))
		require.NoError(t, err)
	}
	_, err := f.deps.Days.Create(ctx, attendance.NewDay("someone-else", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	month := 2
	resp, err := f.tracker.GetHistory(ctx, attendance.HistoryFilter{AccountID: accountID, Month: &month})
	require.NoError(t, err)

	assert.EqualValues(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, "1-2 of 2", resp.Showing)
	require.Len(t, resp.Attendances, 2)
	assert.Equal(t, "2026-02-03", resp.Attendances[0].Date)

	bad := 13
	_, err = f.tracker.GetHistory(ctx, attendance.HistoryFilter{AccountID: accountID, Month: &bad})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
	"github.com/google/uuid"
)

type dayRepository struct {
	store *Store
}

func NewDayRepository(store *Store) attendance.DayRepository {
	return &dayRepository{store: store}
}

func (r *dayRepository) Create(ctx context.Context, day attendance.Day) (attendance.Day, error) {
	defer r.store.acquire(ctx)()

	key := dayKey{accountID: day.AccountID, date: dateutil.FormatDay(day.Date)}
	if _, exists := r.store.dayIndex[key]; exists {
		return attendance.Day{}, attendance.ErrDayAlreadyExists
	}

	if day.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Day{}, err
		}
		day.ID = id.String()
	}
	day.CreatedAt = now()
	day.UpdatedAt = day.CreatedAt

	r.store.days[day.ID] = day
	r.store.dayIndex[key] = day.ID
	return day, nil
}

func (r *dayRepository) GetByID(ctx context.Context, id string) (attendance.Day, error) {
	defer r.store.acquire(ctx)()

	day, ok := r.store.days[id]
	if !ok {
		return attendance.Day{}, attendance.ErrDayNotFound
	}
	return day, nil
}

func (r *dayRepository) GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (attendance.Day, error) {
	defer r.store.acquire(ctx)()

	id, ok := r.store.dayIndex[dayKey{accountID: accountID, date: dateutil.FormatDay(date)}]
	if !ok {
		return attendance.Day{}, attendance.ErrDayNotFound
	}
	return r.store.days[id], nil
}

func (r *dayRepository) Update(ctx context.Context, day attendance.Day) (attendance.Day, error) {
	defer r.store.acquire(ctx)()

	existing, ok := r.store.days[day.ID]
	if !ok {
		return attendance.Day{}, attendance.ErrDayNotFound
	}
	day.CreatedAt = existing.CreatedAt
	day.UpdatedAt = now()
	r.store.days[day.ID] = day
	return day, nil
}

func (r *dayRepository) List(ctx context.Context, query attendance.DayQuery) ([]attendance.Day, int64, error) {
	defer r.store.acquire(ctx)()

	var matched []attendance.Day
	for _, day := range r.store.days {
		date := dateutil.FormatDay(day.Date)
		if query.AccountID != nil && day.AccountID != *query.AccountID {
			continue
		}
		if query.From != nil && date < *query.From {
			continue
		}
		if query.To != nil && date > *query.To {
			continue
		}
		if query.Status != nil && day.Status != *query.Status {
			continue
		}
		matched = append(matched, day)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})

	return paginate(matched, query.Page, query.Limit), int64(len(matched)), nil
}

type checkEventRepository struct {
	store *Store
}

func NewCheckEventRepository(store *Store) attendance.CheckEventRepository {
	return &checkEventRepository{store: store}
}

func (r *checkEventRepository) Create(ctx context.Context, event attendance.CheckEvent) (attendance.CheckEvent, error) {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.days[event.AttendanceLogID]; !ok {
		return attendance.CheckEvent{}, attendance.ErrDayNotFound
	}

	if event.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.CheckEvent{}, err
		}
		event.ID = id.String()
	}
	event.CreatedAt = now()

	r.store.events[event.ID] = event
	return event, nil
}

func (r *checkEventRepository) GetByID(ctx context.Context, id string) (attendance.CheckEvent, error) {
	defer r.store.acquire(ctx)()

	event, ok := r.store.events[id]
	if !ok {
		return attendance.CheckEvent{}, attendance.ErrCheckEventNotFound
	}
	return event, nil
}

func (r *checkEventRepository) ListByAttendanceLog(ctx context.Context, attendanceLogID string) ([]attendance.CheckEvent, error) {
	defer r.store.acquire(ctx)()

	var events []attendance.CheckEvent
	for _, event := range r.store.events {
		if event.AttendanceLogID == attendanceLogID {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CheckedAt.Equal(events[j].CheckedAt) {
			return events[i].CheckedAt.Before(events[j].CheckedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (r *checkEventRepository) Delete(ctx context.Context, id string) error {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.events[id]; !ok {
		return attendance.ErrCheckEventNotFound
	}
	delete(r.store.events, id)
	return nil
}

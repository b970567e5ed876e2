package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const dayColumns = `
	id, account_id, date, day, is_sunday, status, status_source,
	first_check_in, last_check_out, total_work_minutes, total_break_minutes,
	has_open_session, has_open_break, override_note, override_by, is_wfh,
	created_at, updated_at`

type dayRepository struct {
	db *database.DB
}

func scanDay(row pgx.Row) (attendance.Day, error) {
	var d attendance.Day
	err := row.Scan(
		&d.ID, &d.AccountID, &d.Date, &d.Day, &d.IsSunday, &d.Status, &d.StatusSource,
		&d.FirstCheckIn, &d.LastCheckOut, &d.TotalWorkMinutes, &d.TotalBreakMinutes,
		&d.HasOpenSession, &d.HasOpenBreak, &d.OverrideNote, &d.OverrideBy, &d.IsWFH,
		&d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Create implements attendance.DayRepository.
// A concurrent insert for the same (account, date) surfaces as ErrDayAlreadyExists.
func (r *dayRepository) Create(ctx context.Context, day attendance.Day) (attendance.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_logs (
			account_id, date, day, is_sunday, status, status_source,
			first_check_in, last_check_out, total_work_minutes, total_break_minutes,
			has_open_session, has_open_break, override_note, override_by, is_wfh
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		ON CONFLICT (account_id, date) DO NOTHING
		RETURNING ` + dayColumns

	created, err := scanDay(q.QueryRow(ctx, query,
		day.AccountID, day.Date, day.Day, day.IsSunday, day.Status, day.StatusSource,
		day.FirstCheckIn, day.LastCheckOut, day.TotalWorkMinutes, day.TotalBreakMinutes,
		day.HasOpenSession, day.HasOpenBreak, day.OverrideNote, day.OverrideBy, day.IsWFH,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return attendance.Day{}, attendance.ErrDayAlreadyExists
		}
		return attendance.Day{}, fmt.Errorf("failed to create attendance log: %w", err)
	}

	return created, nil
}

// GetByID implements attendance.DayRepository.
func (r *dayRepository) GetByID(ctx context.Context, id string) (attendance.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dayColumns + ` FROM attendance_logs WHERE id = $1` + lockClause(ctx)

	day, err := scanDay(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Day{}, attendance.ErrDayNotFound
		}
		return attendance.Day{}, fmt.Errorf("failed to get attendance log by id: %w", err)
	}

	return day, nil
}

// GetByAccountAndDate implements attendance.DayRepository.
func (r *dayRepository) GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (attendance.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dayColumns + ` FROM attendance_logs WHERE account_id = $1 AND date = $2` + lockClause(ctx)

	day, err := scanDay(q.QueryRow(ctx, query, accountID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Day{}, attendance.ErrDayNotFound
		}
		return attendance.Day{}, fmt.Errorf("failed to get attendance log by account and date: %w", err)
	}

	return day, nil
}

// Update implements attendance.DayRepository.
func (r *dayRepository) Update(ctx context.Context, day attendance.Day) (attendance.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_logs SET
			status = $2, status_source = $3,
			first_check_in = $4, last_check_out = $5,
			total_work_minutes = $6, total_break_minutes = $7,
			has_open_session = $8, has_open_break = $9,
			override_note = $10, override_by = $11, is_wfh = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + dayColumns

	updated, err := scanDay(q.QueryRow(ctx, query,
		day.ID, day.Status, day.StatusSource,
		day.FirstCheckIn, day.LastCheckOut,
		day.TotalWorkMinutes, day.TotalBreakMinutes,
		day.HasOpenSession, day.HasOpenBreak,
		day.OverrideNote, day.OverrideBy, day.IsWFH,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Day{}, attendance.ErrDayNotFound
		}
		return attendance.Day{}, fmt.Errorf("failed to update attendance log: %w", err)
	}

	return updated, nil
}

// List implements attendance.DayRepository.
func (r *dayRepository) List(ctx context.Context, query attendance.DayQuery) ([]attendance.Day, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if query.AccountID != nil {
		baseWhere += fmt.Sprintf(" AND account_id = $%d", argIdx)
		args = append(args, *query.AccountID)
		argIdx++
	}
	if query.From != nil {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *query.From)
		argIdx++
	}
	if query.To != nil {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *query.To)
		argIdx++
	}
	if query.Status != nil {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *query.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_logs WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance logs: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_logs
		WHERE %s
		ORDER BY date DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, dayColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, query.Limit, query.Offset())

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance logs: %w", err)
	}
	defer rows.Close()

	var days []attendance.Day
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance log: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating attendance logs: %w", err)
	}

	return days, total, nil
}

func NewDayRepository(db *database.DB) attendance.DayRepository {
	return &dayRepository{db: db}
}

const checkEventColumns = `
	id, attendance_log_id, account_id, date, checked_at, type, session_id,
	source, note, break_type, edited_by, created_at`

type checkEventRepository struct {
	db *database.DB
}

func scanCheckEvent(row pgx.Row) (attendance.CheckEvent, error) {
	var e attendance.CheckEvent
	err := row.Scan(
		&e.ID, &e.AttendanceLogID, &e.AccountID, &e.Date, &e.CheckedAt, &e.Type, &e.SessionID,
		&e.Source, &e.Note, &e.BreakType, &e.EditedBy, &e.CreatedAt,
	)
	return e, err
}

// Create implements attendance.CheckEventRepository.
func (r *checkEventRepository) Create(ctx context.Context, event attendance.CheckEvent) (attendance.CheckEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO check_events (
			attendance_log_id, account_id, date, checked_at, type, session_id,
			source, note, break_type, edited_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + checkEventColumns

	created, err := scanCheckEvent(q.QueryRow(ctx, query,
		event.AttendanceLogID, event.AccountID, event.Date, event.CheckedAt, event.Type, event.SessionID,
		event.Source, event.Note, event.BreakType, event.EditedBy,
	))
	if err != nil {
		return attendance.CheckEvent{}, fmt.Errorf("failed to create check event: %w", err)
	}

	return created, nil
}

// GetByID implements attendance.CheckEventRepository.
func (r *checkEventRepository) GetByID(ctx context.Context, id string) (attendance.CheckEvent, error) {
	q := GetQuerier(ctx, r.db)

	event, err := scanCheckEvent(q.QueryRow(ctx, `SELECT `+checkEventColumns+` FROM check_events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.CheckEvent{}, attendance.ErrCheckEventNotFound
		}
		return attendance.CheckEvent{}, fmt.Errorf("failed to get check event: %w", err)
	}

	return event, nil
}

// ListByAttendanceLog implements attendance.CheckEventRepository.
func (r *checkEventRepository) ListByAttendanceLog(ctx context.Context, attendanceLogID string) ([]attendance.CheckEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + checkEventColumns + `
		FROM check_events
		WHERE attendance_log_id = $1
		ORDER BY checked_at ASC, id ASC`

	rows, err := q.Query(ctx, query, attendanceLogID)
	if err != nil {
		return nil, fmt.Errorf("failed to query check events: %w", err)
	}
	defer rows.Close()

	var events []attendance.CheckEvent
	for rows.Next() {
		event, err := scanCheckEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check events: %w", err)
	}

	return events, nil
}

// Delete implements attendance.CheckEventRepository.
func (r *checkEventRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM check_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete check event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrCheckEventNotFound
	}

	return nil
}

func NewCheckEventRepository(db *database.DB) attendance.CheckEventRepository {
	return &checkEventRepository{db: db}
}

package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	id, account_id, type, start_date, end_date, reason, status,
	decided_by, decided_at, decision_reason, created_at, updated_at`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.AccountID,
		&lr.Type,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Reason,
		&lr.Status,
		&lr.DecidedBy,
		&lr.DecidedAt,
		&lr.DecisionReason,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (account_id, type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.AccountID, request.Type, request.StartDate, request.EndDate, request.Reason, request.Status,
	))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1` + lockClause(ctx)

	request, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return request, nil
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $2, decided_by = $3, decided_at = $4, decision_reason = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leaveRequestColumns

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID, request.Status, request.DecidedBy, request.DecidedAt, request.DecisionReason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return updated, nil
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, query leave.Query) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if query.AccountID != nil {
		baseWhere += fmt.Sprintf(" AND account_id = $%d", argIdx)
		args = append(args, *query.AccountID)
		argIdx++
	}
	if query.Status != nil {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *query.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, query.Limit, query.Offset())

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating leave requests: %w", err)
	}

	return requests, total, nil
}

// FindBlocking implements leave.LeaveRequestRepository. A NULL end_date
// blocks every range ending on or after its start date.
func (r *leaveRequestRepositoryImpl) FindBlocking(ctx context.Context, accountID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE account_id = $1
		  AND status IN ('PENDING', 'APPROVED')
		  AND start_date <= $3
		  AND (end_date IS NULL OR end_date >= $2)`

	rows, err := q.Query(ctx, query, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}

	return requests, nil
}

// LockAccount implements leave.LeaveRequestRepository with a transaction
// scoped advisory lock. Outside a transaction it is a no-op.
func (r *leaveRequestRepositoryImpl) LockAccount(ctx context.Context, accountID string) error {
	if !inTransaction(ctx) {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "leave:"+accountID); err != nil {
		return fmt.Errorf("failed to lock account leave requests: %w", err)
	}

	return nil
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

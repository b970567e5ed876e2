package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type profileRepositoryImpl struct {
	db *database.DB
}

// GetByAccountID implements employee.ProfileRepository.
func (e *profileRepositoryImpl) GetByAccountID(ctx context.Context, accountID string) (employee.Profile, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT account_id, is_available, availability_updated_at
		FROM employee_profiles
		WHERE account_id = $1
	`

	var p employee.Profile
	err := q.QueryRow(ctx, query, accountID).Scan(&p.AccountID, &p.IsAvailable, &p.AvailabilityUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Profile{}, employee.ErrProfileNotFound
		}
		return employee.Profile{}, fmt.Errorf("failed to get employee profile: %w", err)
	}

	return p, nil
}

// SetAvailability implements employee.ProfileRepository.
func (e *profileRepositoryImpl) SetAvailability(ctx context.Context, accountID string, available bool, at time.Time) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employee_profiles (account_id, is_available, availability_updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET is_available = EXCLUDED.is_available,
		    availability_updated_at = EXCLUDED.availability_updated_at
	`

	if _, err := q.Exec(ctx, query, accountID, available, at); err != nil {
		return fmt.Errorf("failed to set availability for account %s: %w", accountID, err)
	}

	return nil
}

func NewProfileRepository(db *database.DB) employee.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

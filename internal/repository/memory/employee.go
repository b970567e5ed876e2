package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type profileRepository struct {
	store *Store
}

func NewProfileRepository(store *Store) employee.ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) GetByAccountID(ctx context.Context, accountID string) (employee.Profile, error) {
	defer r.store.acquire(ctx)()

	profile, ok := r.store.profiles[accountID]
	if !ok {
		return employee.Profile{}, employee.ErrProfileNotFound
	}
	return profile, nil
}

func (r *profileRepository) SetAvailability(ctx context.Context, accountID string, available bool, at time.Time) error {
	defer r.store.acquire(ctx)()

	r.store.profiles[accountID] = employee.Profile{
		AccountID:             accountID,
		IsAvailable:           available,
		AvailabilityUpdatedAt: &at,
	}
	return nil
}

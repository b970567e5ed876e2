package employee

import (
	"context"
	"time"
)

type ProfileRepository interface {
	// GetByAccountID returns ErrProfileNotFound when absent.
	GetByAccountID(ctx context.Context, accountID string) (Profile, error)

	// SetAvailability upserts the availability flag of an account.
	SetAvailability(ctx context.Context, accountID string, available bool, at time.Time) error
}

package notifier

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

// Multi fans a message out to every notifier in order. A failing target
// does not stop delivery to the rest.
type Multi []notification.Notifier

// Emit implements notification.Notifier.
func (m Multi) Emit(ctx context.Context, msg notification.Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Emit(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

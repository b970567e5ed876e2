package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveRequestRepository struct {
	store *Store
}

func NewLeaveRequestRepository(store *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{store: store}
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.store.acquire(ctx)()

	if request.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveRequest{}, err
		}
		request.ID = id.String()
	}
	request.CreatedAt = now()
	request.UpdatedAt = request.CreatedAt

	r.store.leaves[request.ID] = request
	return request, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer r.store.acquire(ctx)()

	request, ok := r.store.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.store.acquire(ctx)()

	existing, ok := r.store.leaves[request.ID]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	request.CreatedAt = existing.CreatedAt
	request.UpdatedAt = now()
	r.store.leaves[request.ID] = request
	return request, nil
}

func (r *leaveRequestRepository) Delete(ctx context.Context, id string) error {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.leaves[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(r.store.leaves, id)
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, query leave.Query) ([]leave.LeaveRequest, int64, error) {
	defer r.store.acquire(ctx)()

	var matched []leave.LeaveRequest
	for _, request := range r.store.leaves {
		if query.AccountID != nil && request.AccountID != *query.AccountID {
			continue
		}
		if query.Status != nil && request.Status != *query.Status {
			continue
		}
		matched = append(matched, request)
	}

	// UUIDv7 ids sort by creation time.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	return paginate(matched, query.Page, query.Limit), int64(len(matched)), nil
}

func (r *leaveRequestRepository) FindBlocking(ctx context.Context, accountID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	defer r.store.acquire(ctx)()

	var blocking []leave.LeaveRequest
	for _, request := range r.store.leaves {
		if request.AccountID == accountID && request.Blocking() && leave.Overlaps(request, start, end) {
			blocking = append(blocking, request)
		}
	}
	return blocking, nil
}

// LockAccount is a no-op: a memory transaction already holds the store lock.
func (r *leaveRequestRepository) LockAccount(ctx context.Context, accountID string) error {
	return nil
}

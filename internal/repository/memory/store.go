// Package memory is an in-process implementation of every repository and
// of database.Transactor. It backs the service tests and STORE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
)

type dayKey struct {
	accountID string
	date      string
}

// Store holds all tables behind one mutex. A transaction keeps the mutex
// for its whole lifetime, so transactions are fully serialised.
type Store struct {
	mu sync.Mutex

	days     map[string]attendance.Day
	dayIndex map[dayKey]string
	events   map[string]attendance.CheckEvent
	leaves   map[string]leave.LeaveRequest
	profiles map[string]employee.Profile
}

func NewStore() *Store {
	return &Store{
		days:     make(map[string]attendance.Day),
		dayIndex: make(map[dayKey]string),
		events:   make(map[string]attendance.CheckEvent),
		leaves:   make(map[string]leave.LeaveRequest),
		profiles: make(map[string]employee.Profile),
	}
}

type txMarker struct{}

func (s *Store) inTransaction(ctx context.Context) bool {
	owner, ok := ctx.Value(txMarker{}).(*Store)
	return ok && owner == s
}

// acquire locks the store unless ctx already belongs to one of its transactions.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTransaction(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTransaction implements database.Transactor with snapshot and
// rollback on error.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTransaction(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	days     map[string]attendance.Day
	dayIndex map[dayKey]string
	events   map[string]attendance.CheckEvent
	leaves   map[string]leave.LeaveRequest
	profiles map[string]employee.Profile
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		days:     cloneMap(s.days),
		dayIndex: cloneMap(s.dayIndex),
		events:   cloneMap(s.events),
		leaves:   cloneMap(s.leaves),
		profiles: cloneMap(s.profiles),
	}
}

func (s *Store) restore(snap snapshot) {
	s.days = snap.days
	s.dayIndex = snap.dayIndex
	s.events = snap.events
	s.leaves = snap.leaves
	s.profiles = snap.profiles
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func now() time.Time {
	return time.Now().UTC()
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

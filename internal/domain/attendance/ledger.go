package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
)

// Session is a CHECK_IN/CHECK_OUT pair sharing a session id.
type Session struct {
	SessionID string
	CheckIn   *CheckEvent
	CheckOut  *CheckEvent
}

func (s Session) IsOpen() bool {
	return s.CheckIn != nil && s.CheckOut == nil
}

func (s Session) IsClosed() bool {
	return s.CheckIn != nil && s.CheckOut != nil
}

// Minutes is the floored wall-clock span of a closed session, 0 otherwise.
func (s Session) Minutes() int {
	if !s.IsClosed() {
		return 0
	}
	return dateutil.MinutesBetween(s.CheckIn.CheckedAt, s.CheckOut.CheckedAt)
}

// SessionLedger reconstructs work sessions from one day's events. It only
// reports state; enforcing invariants is the caller's job.
type SessionLedger struct {
	byID  map[string]*Session
	order []string
}

// BuildSessionLedger indexes CHECK_IN/CHECK_OUT events by session id.
// The index is rebuilt per request and never persisted.
func BuildSessionLedger(events []CheckEvent) SessionLedger {
	l := SessionLedger{byID: make(map[string]*Session)}

	for _, ev := range sortedByCheckedAt(events) {
		if ev.Type != EventCheckIn && ev.Type != EventCheckOut {
			continue
		}
		s, ok := l.byID[ev.SessionID]
		if !ok {
			s = &Session{SessionID: ev.SessionID}
			l.byID[ev.SessionID] = s
			l.order = append(l.order, ev.SessionID)
		}
		// Duplicates are a bug state; the first fact wins.
		if ev.Type == EventCheckIn && s.CheckIn == nil {
			s.CheckIn = ev
		}
		if ev.Type == EventCheckOut && s.CheckOut == nil {
			s.CheckOut = ev
		}
	}

	return l
}

func (l SessionLedger) Get(sessionID string) (Session, bool) {
	s, ok := l.byID[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Sessions returns sessions in order of their first event.
func (l SessionLedger) Sessions() []Session {
	out := make([]Session, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.byID[id])
	}
	return out
}

// OpenSessionID is the session with a CHECK_IN and no CHECK_OUT. If the log
// is inconsistent and several are open, the earliest one is returned.
func (l SessionLedger) OpenSessionID() string {
	for _, id := range l.order {
		if l.byID[id].IsOpen() {
			return id
		}
	}
	return ""
}

func (l SessionLedger) OpenSessionCount() int {
	n := 0
	for _, s := range l.byID {
		if s.IsOpen() {
			n++
		}
	}
	return n
}

// ClosedMinutes sums the floored span of every closed session.
func (l SessionLedger) ClosedMinutes() int {
	total := 0
	for _, s := range l.byID {
		total += s.Minutes()
	}
	return total
}

// Break is a BREAK_START/BREAK_END pair sharing a session id.
// WorkSessionID is the work session the break started in, empty when the
// break started outside every session.
type Break struct {
	SessionID       string
	WorkSessionID   string
	BreakType       BreakType
	Start           *CheckEvent
	End             *CheckEvent
	DurationMinutes int
	IsOpen          bool
}

type BreakLedger struct {
	byID  map[string]*Break
	order []string
}

// BuildBreakLedger indexes BREAK_START/BREAK_END events by session id and
// attributes every break to the work session it started in.
//
// Only a break of the currently open work session can be open. A break
// left without a BREAK_END in a session that has since checked out ends at
// that CHECK_OUT, the same instant a checkout closes an open break. A break
// outside every session has no duration.
func BuildBreakLedger(events []CheckEvent) BreakLedger {
	l := BreakLedger{byID: make(map[string]*Break)}

	for _, ev := range sortedByCheckedAt(events) {
		if ev.Type != EventBreakStart && ev.Type != EventBreakEnd {
			continue
		}
		b, ok := l.byID[ev.SessionID]
		if !ok {
			b = &Break{SessionID: ev.SessionID, BreakType: BreakOther}
			l.byID[ev.SessionID] = b
			l.order = append(l.order, ev.SessionID)
		}
		if ev.Type == EventBreakStart && b.Start == nil {
			b.Start = ev
			if ev.BreakType != nil {
				b.BreakType = *ev.BreakType
			}
		}
		if ev.Type == EventBreakEnd && b.End == nil {
			b.End = ev
		}
	}

	sessions := BuildSessionLedger(events).Sessions()
	var open *Break

	for _, id := range l.order {
		b := l.byID[id]
		if b.Start == nil {
			continue
		}
		owner, ok := owningSession(sessions, b.Start.CheckedAt)
		if ok {
			b.WorkSessionID = owner.SessionID
		}

		switch {
		case b.End != nil:
			b.DurationMinutes = dateutil.MinutesBetween(b.Start.CheckedAt, b.End.CheckedAt)
		case ok && owner.IsOpen():
			// Breaks are ordered by start; the latest one of the open session wins.
			open = b
		case ok && owner.CheckOut.CheckedAt.After(b.Start.CheckedAt):
			b.DurationMinutes = dateutil.MinutesBetween(b.Start.CheckedAt, owner.CheckOut.CheckedAt)
		}
	}
	if open != nil {
		open.IsOpen = true
	}

	return l
}

// owningSession is the latest session checked in at or before at.
func owningSession(sessions []Session, at time.Time) (Session, bool) {
	var owner Session
	found := false
	for _, s := range sessions {
		if s.CheckIn == nil || s.CheckIn.CheckedAt.After(at) {
			continue
		}
		if !found || s.CheckIn.CheckedAt.After(owner.CheckIn.CheckedAt) {
			owner, found = s, true
		}
	}
	return owner, found
}

func (l BreakLedger) Get(sessionID string) (Break, bool) {
	b, ok := l.byID[sessionID]
	if !ok {
		return Break{}, false
	}
	return *b, true
}

func (l BreakLedger) Breaks() []Break {
	out := make([]Break, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.byID[id])
	}
	return out
}

func (l BreakLedger) OpenBreakID() string {
	for _, id := range l.order {
		if l.byID[id].IsOpen {
			return id
		}
	}
	return ""
}

func (l BreakLedger) TotalMinutes() int {
	total := 0
	for _, b := range l.byID {
		total += b.DurationMinutes
	}
	return total
}

// Summary is every aggregate field that can be derived from the event log.
type Summary struct {
	TotalWorkMinutes  int
	TotalBreakMinutes int
	OpenSessionID     string
	OpenBreakID       string
	FirstCheckIn      *time.Time
	LastCheckOut      *time.Time
}

// Derive replays a day's events from scratch. The incremental tracker path
// and the correction path must both agree with this function.
func Derive(events []CheckEvent) Summary {
	sessions := BuildSessionLedger(events)
	breaks := BuildBreakLedger(events)

	s := Summary{
		TotalWorkMinutes:  sessions.ClosedMinutes(),
		TotalBreakMinutes: breaks.TotalMinutes(),
		OpenSessionID:     sessions.OpenSessionID(),
		OpenBreakID:       breaks.OpenBreakID(),
	}

	for _, ev := range events {
		at := ev.CheckedAt
		switch ev.Type {
		case EventCheckIn:
			if s.FirstCheckIn == nil || at.Before(*s.FirstCheckIn) {
				s.FirstCheckIn = &at
			}
		case EventCheckOut:
			if s.LastCheckOut == nil || at.After(*s.LastCheckOut) {
				s.LastCheckOut = &at
			}
		}
	}

	return s
}

func sortedByCheckedAt(events []CheckEvent) []*CheckEvent {
	out := make([]*CheckEvent, len(events))
	for i := range events {
		out[i] = &events[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckedAt.Before(out[j].CheckedAt)
	})
	return out
}

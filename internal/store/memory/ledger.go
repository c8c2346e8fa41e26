// Package memory implements the booking ledger on a process-local map. A
// single mutex held across the check-then-act sequence is the mutual
// exclusion scope, so the at-most-one-winner guarantee matches the Postgres
// ledger. Used in tests and in demo deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"slotd/backend/internal/domain"
	"slotd/backend/internal/store"
)

type Ledger struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Appointment
}

func NewLedger() *Ledger {
	return &Ledger{
		nextID: 1,
		byID:   make(map[int64]domain.Appointment),
	}
}

func (l *Ledger) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.occupiedLocked(appt.Date, appt.Time, 0) {
		return domain.Appointment{}, store.ErrConflict
	}

	appt.ID = l.nextID
	l.nextID++
	appt.Status = domain.StatusScheduled
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	l.byID[appt.ID] = appt
	return appt, nil
}

func (l *Ledger) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.byID[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (l *Ledger) Update(ctx context.Context, id int64, patch store.UpdatePatch) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.byID[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}

	next := cur
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if patch.AppointmentType != nil {
		next.AppointmentType = *patch.AppointmentType
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.Time != nil {
		next.Time = *patch.Time
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}

	movedSlot := next.Date != cur.Date || next.Time != cur.Time
	if movedSlot && next.Status == domain.StatusScheduled {
		if l.occupiedLocked(next.Date, next.Time, id) {
			return domain.Appointment{}, store.ErrConflict
		}
	}

	l.byID[id] = next
	return next, nil
}

func (l *Ledger) Cancel(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Status = domain.StatusCancelled
	l.byID[id] = a
	return nil
}

func (l *Ledger) ListByDate(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Appointment
	for _, a := range l.byID {
		if a.Date == date && a.Status == domain.StatusScheduled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (l *Ledger) ScheduledTimes(ctx context.Context, date domain.Date) ([]domain.TimeOfDay, error) {
	appts, err := l.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	times := make([]domain.TimeOfDay, 0, len(appts))
	for _, a := range appts {
		times = append(times, a.Time)
	}
	return times, nil
}

func (l *Ledger) occupiedLocked(date domain.Date, t domain.TimeOfDay, excludeID int64) bool {
	for _, a := range l.byID {
		if a.ID != excludeID && a.Date == date && a.Time == t && a.Status == domain.StatusScheduled {
			return true
		}
	}
	return false
}

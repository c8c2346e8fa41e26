package store

import (
	"context"

	"slotd/backend/internal/domain"
)

// DefaultSuggestions is how many nearest alternatives callers are offered
// when a slot is taken.
const DefaultSuggestions = 5

// UpdatePatch is the allow-listed set of mutable appointment fields. A nil
// pointer leaves the field untouched. ID and CreatedAt have no counterpart
// here on purpose: the type is the allow-list.
type UpdatePatch struct {
	Name            *string
	Email           *string
	AppointmentType *domain.AppointmentType
	Date            *domain.Date
	Time            *domain.TimeOfDay
	Status          *domain.AppointmentStatus
	Notes           *string
}

// Empty reports whether the patch touches no fields.
func (p UpdatePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.AppointmentType == nil &&
		p.Date == nil && p.Time == nil && p.Status == nil && p.Notes == nil
}

// MovesSlot reports whether the patch changes the (date, time) pair and so
// requires an occupancy re-check on the target slot.
func (p UpdatePatch) MovesSlot() bool {
	return p.Date != nil || p.Time != nil
}

// BookingLedger is the sole owner of appointment records. Implementations
// must make the occupancy check and the write a single atomic unit: at most
// one scheduled appointment ever exists per (date, time), and the loser of a
// race observes ErrConflict rather than a duplicate row.
type BookingLedger interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (domain.Appointment, error)
	Update(ctx context.Context, id int64, patch UpdatePatch) (domain.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	ListByDate(ctx context.Context, date domain.Date) ([]domain.Appointment, error)
	ScheduledTimes(ctx context.Context, date domain.Date) ([]domain.TimeOfDay, error)
}

// Package validate holds the pure input checks applied before any store
// access. Every check is stateless and returns nil for valid input or an
// *Error whose message is safe to surface to the caller verbatim.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"slotd/backend/internal/domain"
)

// Error is a recoverable input failure. Its message is the corrective text
// shown to the caller.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func newError(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

var (
	emailPattern = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.\w+$`)
	namePattern  = regexp.MustCompile(`^[\p{L}' \-]+$`)
)

func Date(s string) error {
	if _, err := domain.ParseDate(s); err != nil {
		return newError("Date must be in YYYY-MM-DD format.")
	}
	return nil
}

func Time(s string) error {
	if _, err := domain.ParseTimeOfDay(s); err != nil {
		return newError("Time must be in HH:MM:SS format.")
	}
	return nil
}

func Email(s string) error {
	if !emailPattern.MatchString(s) {
		return newError("Invalid email format.")
	}
	return nil
}

func Name(s string) error {
	if s == "" || !namePattern.MatchString(s) {
		return newError("Name must only contain letters, spaces, hyphens, or apostrophes.")
	}
	return nil
}

// AppointmentType matches case-insensitively against the allowed types and
// returns the canonical lowercase value.
func AppointmentType(s string) (domain.AppointmentType, error) {
	canonical := domain.AppointmentType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range domain.AppointmentTypes {
		if canonical == t {
			return t, nil
		}
	}
	names := make([]string, 0, len(domain.AppointmentTypes))
	for _, t := range domain.AppointmentTypes {
		names = append(names, string(t))
	}
	return "", newError("Appointment type must be one of: %s.", strings.Join(names, ", "))
}

// Future reports whether the slot is strictly after now in now's location.
// A slot equal to the reference clock counts as past.
func Future(d domain.Date, t domain.TimeOfDay, now time.Time) error {
	today := domain.DateOf(now)
	switch {
	case d < today:
		return newError("Date is in the past.")
	case d == today:
		if t <= domain.TimeOfDayOf(now) {
			return newError("Time is in the past.")
		}
	}
	return nil
}

// WithinBusinessHours checks hour membership in [startHour, endHour); the
// end hour itself is not bookable.
func WithinBusinessHours(t domain.TimeOfDay, startHour, endHour int) error {
	h := t.Hour()
	if h < startHour || h >= endHour {
		return newError("Time must be within business hours (%02d:00 to %02d:00).", startHour, endHour)
	}
	return nil
}

// SlotGranular checks that the time falls on the booking grid: minutes a
// multiple of the granularity, seconds zero.
func SlotGranular(t domain.TimeOfDay, granularityMinutes int) error {
	if granularityMinutes <= 0 {
		granularityMinutes = 30
	}
	if t.Minute()%granularityMinutes != 0 || t.SecondsOfDay()%60 != 0 {
		return newError("Appointments can only be booked at %d-minute intervals (e.g., 09:00:00, 09:30:00).", granularityMinutes)
	}
	return nil
}

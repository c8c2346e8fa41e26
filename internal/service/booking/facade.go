package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"slotd/backend/internal/domain"
	"slotd/backend/internal/store"
	"slotd/backend/internal/validate"
)

// IsValidation reports whether err is a recoverable input failure whose
// message can be surfaced to the caller verbatim.
func IsValidation(err error) bool {
	var ve *validate.Error
	var be *ValidationError
	return errors.As(err, &ve) || errors.As(err, &be)
}

// Facade renders the five scheduling operations as plain text, the shape
// consumed by agent tools and CLI callers. Every branch returns a complete
// sentence; store-level detail is logged, never surfaced.
type Facade struct {
	svc *Service
	log *slog.Logger
}

func NewFacade(svc *Service, log *slog.Logger) *Facade {
	if log == nil {
		log = slog.Default()
	}
	return &Facade{svc: svc, log: log.With(slog.String("component", "booking.facade"))}
}

func (f *Facade) CheckAvailability(ctx context.Context, date, timeStr string) string {
	av, err := f.svc.CheckAvailability(ctx, date, timeStr)
	if err != nil {
		if IsValidation(err) {
			f.log.Warn("check availability rejected", slog.String("reason", err.Error()))
			return err.Error()
		}
		f.log.Error("check availability failed", slog.Any("err", err))
		return "Error checking availability. Please try again."
	}
	if av.Available {
		return fmt.Sprintf("Time slot %s on %s is available.", av.Time, av.Date)
	}
	return unavailableMessage(av.Date, av.Time, av.Alternatives)
}

func (f *Facade) CreateAppointment(ctx context.Context, name, email, appointmentType, date, timeStr, notes string) string {
	f.log.Info("create appointment requested",
		slog.String("email", maskEmail(email)),
		slog.String("date", date),
		slog.String("time", timeStr),
	)
	appt, err := f.svc.Create(ctx, CreateInput{
		Name:            name,
		Email:           email,
		AppointmentType: appointmentType,
		Date:            date,
		Time:            timeStr,
		Notes:           notes,
	})
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return unavailableMessage(conflict.Date, conflict.Time, conflict.Alternatives)
		}
		if IsValidation(err) {
			f.log.Warn("create appointment rejected", slog.String("reason", err.Error()))
			return err.Error()
		}
		f.log.Error("create appointment failed", slog.Any("err", err))
		return "Failed to create appointment. Please try again."
	}
	return fmt.Sprintf("Appointment created successfully with ID: %d", appt.ID)
}

func (f *Facade) ListAvailableSlots(ctx context.Context, date string) string {
	slots, err := f.svc.ListAvailable(ctx, date)
	if err != nil {
		if IsValidation(err) {
			return err.Error()
		}
		f.log.Error("list available slots failed", slog.Any("err", err))
		return "Error getting available slots. Please try again."
	}
	if len(slots) == 0 {
		return fmt.Sprintf("No available slots for %s", date)
	}
	return fmt.Sprintf("Available slots for %s: %s", date, joinDisplay(slots))
}

func (f *Facade) UpdateAppointment(ctx context.Context, id int64, in UpdateInput) string {
	_, err := f.svc.Update(ctx, id, in)
	switch {
	case err == nil:
		return "Appointment updated successfully."
	case errors.Is(err, ErrNoFields):
		return "No valid fields to update."
	case errors.Is(err, store.ErrNotFound):
		return "Appointment not found."
	case IsValidation(err):
		f.log.Warn("update appointment rejected", slog.Int64("appointment_id", id), slog.String("reason", err.Error()))
		return err.Error()
	default:
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return unavailableMessage(conflict.Date, conflict.Time, conflict.Alternatives)
		}
		f.log.Error("update appointment failed", slog.Int64("appointment_id", id), slog.Any("err", err))
		return "Failed to update appointment. Please try again."
	}
}

func (f *Facade) CancelAppointment(ctx context.Context, id int64) string {
	err := f.svc.Cancel(ctx, id)
	switch {
	case err == nil:
		return "Appointment cancelled successfully."
	case errors.Is(err, store.ErrNotFound):
		return "Appointment not found."
	default:
		f.log.Error("cancel appointment failed", slog.Int64("appointment_id", id), slog.Any("err", err))
		return "Failed to cancel appointment. Please try again."
	}
}

func unavailableMessage(d domain.Date, t domain.TimeOfDay, alts []domain.TimeOfDay) string {
	if len(alts) == 0 {
		return fmt.Sprintf("Time slot %s on %s is not available. No available slots for this date.", t, d)
	}
	return fmt.Sprintf("Time slot %s on %s is not available. Closest available slots: %s", t, d, joinDisplay(alts))
}

func joinDisplay(slots []domain.TimeOfDay) string {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Display())
	}
	return strings.Join(labels, ", ")
}

// maskEmail hides most of the local part before logging.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local, domainPart := email[:at], email[at+1:]
	if len(local) <= 2 {
		return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domainPart
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domainPart
}

// Package booking composes the validator, the slot grid and the booking
// ledger into the five scheduling operations. The typed API here is the
// engine's contract; Facade renders it as plain text for agent and CLI
// callers.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"slotd/backend/internal/domain"
	"slotd/backend/internal/observability/metrics"
	"slotd/backend/internal/schedule"
	"slotd/backend/internal/store"
	"slotd/backend/internal/validate"
)

const (
	DefaultStartHour          = 9
	DefaultEndHour            = 17
	DefaultGranularityMinutes = 30
)

// ErrNoFields reports an update request whose patch touched nothing.
var ErrNoFields = errors.New("no valid fields to update")

// ConflictError reports a slot already held by an active booking, carrying
// the nearest free alternatives for the caller to offer.
type ConflictError struct {
	Date         domain.Date
	Time         domain.TimeOfDay
	Alternatives []domain.TimeOfDay
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot %s on %s is not available", e.Time, e.Date)
}

func (e *ConflictError) Unwrap() error { return store.ErrConflict }

// Config carries the business-hours calendar: bounds, granularity and the
// single operating zone used to interpret "now".
type Config struct {
	StartHour          int
	EndHour            int
	GranularityMinutes int
	Location           *time.Location
}

func (c Config) normalized() Config {
	if c.StartHour == 0 && c.EndHour == 0 {
		c.StartHour = DefaultStartHour
		c.EndHour = DefaultEndHour
	}
	if c.GranularityMinutes <= 0 {
		c.GranularityMinutes = DefaultGranularityMinutes
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

type Service struct {
	ledger  store.BookingLedger
	cfg     Config
	clock   func() time.Time
	log     *slog.Logger
	metrics *metrics.BookingMetrics
}

func NewService(ledger store.BookingLedger, cfg Config, log *slog.Logger, m *metrics.BookingMetrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		ledger:  ledger,
		cfg:     cfg.normalized(),
		clock:   time.Now,
		log:     log.With(slog.String("component", "booking")),
		metrics: m,
	}
}

func (s *Service) now() time.Time {
	return s.clock().In(s.cfg.Location)
}

// Availability answers a point query, with nearest alternatives attached
// when the slot is taken.
type Availability struct {
	Date         domain.Date
	Time         domain.TimeOfDay
	Available    bool
	Alternatives []domain.TimeOfDay
}

func (s *Service) CheckAvailability(ctx context.Context, dateStr, timeStr string) (Availability, error) {
	d, t, err := s.validateSlot(dateStr, timeStr)
	if err != nil {
		return Availability{}, err
	}

	occupied, err := s.ledger.ScheduledTimes(ctx, d)
	if err != nil {
		return Availability{}, err
	}
	for _, o := range occupied {
		if o == t {
			alts, err := s.nearest(ctx, d, t, store.DefaultSuggestions)
			if err != nil {
				return Availability{}, err
			}
			return Availability{Date: d, Time: t, Available: false, Alternatives: alts}, nil
		}
	}
	return Availability{Date: d, Time: t, Available: true}, nil
}

type CreateInput struct {
	Name            string
	Email           string
	AppointmentType string
	Date            string
	Time            string
	Notes           string
}

// Create validates the full input chain, then hands the atomic
// check-and-insert to the ledger. A losing race comes back as
// *ConflictError with suggestions already attached.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	if err := validate.Name(in.Name); err != nil {
		return domain.Appointment{}, err
	}
	if err := validate.Email(in.Email); err != nil {
		return domain.Appointment{}, err
	}
	typ, err := validate.AppointmentType(in.AppointmentType)
	if err != nil {
		return domain.Appointment{}, err
	}
	d, t, err := s.validateSlot(in.Date, in.Time)
	if err != nil {
		return domain.Appointment{}, err
	}

	created, err := s.ledger.Create(ctx, domain.Appointment{
		Name:            in.Name,
		Email:           in.Email,
		AppointmentType: typ,
		Date:            d,
		Time:            t,
		Notes:           in.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.metrics.ObserveConflict()
			return domain.Appointment{}, s.conflict(ctx, d, t)
		}
		return domain.Appointment{}, err
	}

	s.metrics.ObserveCreated()
	s.log.Info("appointment created",
		slog.Int64("appointment_id", created.ID),
		slog.String("email", maskEmail(created.Email)),
		slog.String("date", created.Date.String()),
		slog.String("time", created.Time.String()),
	)
	return created, nil
}

// ListAvailable returns the free slots for a date in chronological order.
// For today, slots not strictly after the clock are excluded.
func (s *Service) ListAvailable(ctx context.Context, dateStr string) ([]domain.TimeOfDay, error) {
	if err := validate.Date(dateStr); err != nil {
		return nil, err
	}
	d, _ := domain.ParseDate(dateStr)
	return s.freeSlots(ctx, d)
}

// NearestAvailable ranks the free slots on a date by distance to the
// requested time, at most max results.
func (s *Service) NearestAvailable(ctx context.Context, dateStr, timeStr string, max int) ([]domain.TimeOfDay, error) {
	if err := validate.Date(dateStr); err != nil {
		return nil, err
	}
	if err := validate.Time(timeStr); err != nil {
		return nil, err
	}
	d, _ := domain.ParseDate(dateStr)
	t, _ := domain.ParseTimeOfDay(timeStr)
	return s.nearest(ctx, d, t, max)
}

// UpdateInput carries raw field updates; nil means leave unchanged. The
// struct shape is the allow-list: id and created_at cannot be expressed.
type UpdateInput struct {
	Name            *string
	Email           *string
	AppointmentType *string
	Date            *string
	Time            *string
	Status          *string
	Notes           *string
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.AppointmentType == nil &&
		in.Date == nil && in.Time == nil && in.Status == nil && in.Notes == nil
}

// Update validates only the fields present, then applies the patch. Moving
// the slot of a scheduled appointment re-checks occupancy atomically in the
// ledger, same as create.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (domain.Appointment, error) {
	if in.empty() {
		return domain.Appointment{}, ErrNoFields
	}

	cur, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}

	patch, err := s.buildPatch(cur, in)
	if err != nil {
		return domain.Appointment{}, err
	}

	updated, err := s.ledger.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.metrics.ObserveConflict()
			d, t := cur.Date, cur.Time
			if patch.Date != nil {
				d = *patch.Date
			}
			if patch.Time != nil {
				t = *patch.Time
			}
			return domain.Appointment{}, s.conflict(ctx, d, t)
		}
		return domain.Appointment{}, err
	}

	s.log.Info("appointment updated", slog.Int64("appointment_id", id))
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id int64) error {
	if err := s.ledger.Cancel(ctx, id); err != nil {
		return err
	}
	s.metrics.ObserveCancelled()
	s.log.Info("appointment cancelled", slog.Int64("appointment_id", id))
	return nil
}

// ListByDate returns the scheduled appointments for a date, chronological.
func (s *Service) ListByDate(ctx context.Context, dateStr string) ([]domain.Appointment, error) {
	if err := validate.Date(dateStr); err != nil {
		return nil, err
	}
	d, _ := domain.ParseDate(dateStr)
	return s.ledger.ListByDate(ctx, d)
}

// validateSlot runs the fixed business-rule chain for a slot reference:
// format, future, business hours, granularity. Order decides which single
// message surfaces when several rules fail.
func (s *Service) validateSlot(dateStr, timeStr string) (domain.Date, domain.TimeOfDay, error) {
	if err := validate.Date(dateStr); err != nil {
		return "", "", err
	}
	if err := validate.Time(timeStr); err != nil {
		return "", "", err
	}
	d, _ := domain.ParseDate(dateStr)
	t, _ := domain.ParseTimeOfDay(timeStr)
	if err := validate.Future(d, t, s.now()); err != nil {
		return "", "", err
	}
	if err := validate.WithinBusinessHours(t, s.cfg.StartHour, s.cfg.EndHour); err != nil {
		return "", "", err
	}
	if err := validate.SlotGranular(t, s.cfg.GranularityMinutes); err != nil {
		return "", "", err
	}
	return d, t, nil
}

// buildPatch validates the provided fields against the current record and
// converts them to the typed store patch.
func (s *Service) buildPatch(cur domain.Appointment, in UpdateInput) (store.UpdatePatch, error) {
	var patch store.UpdatePatch

	if in.Name != nil {
		if err := validate.Name(*in.Name); err != nil {
			return store.UpdatePatch{}, err
		}
		patch.Name = in.Name
	}
	if in.Email != nil {
		if err := validate.Email(*in.Email); err != nil {
			return store.UpdatePatch{}, err
		}
		patch.Email = in.Email
	}
	if in.AppointmentType != nil {
		typ, err := validate.AppointmentType(*in.AppointmentType)
		if err != nil {
			return store.UpdatePatch{}, err
		}
		patch.AppointmentType = &typ
	}
	if in.Status != nil {
		status, err := parseStatus(*in.Status)
		if err != nil {
			return store.UpdatePatch{}, err
		}
		if status == domain.StatusScheduled && cur.Status == domain.StatusCancelled {
			return store.UpdatePatch{}, &ValidationError{msg: "A cancelled appointment cannot be rescheduled."}
		}
		patch.Status = &status
	}

	if in.Date != nil || in.Time != nil {
		targetDate, targetTime := cur.Date, cur.Time
		if in.Date != nil {
			if err := validate.Date(*in.Date); err != nil {
				return store.UpdatePatch{}, err
			}
			d, _ := domain.ParseDate(*in.Date)
			targetDate = d
			patch.Date = &d
		}
		if in.Time != nil {
			if err := validate.Time(*in.Time); err != nil {
				return store.UpdatePatch{}, err
			}
			t, _ := domain.ParseTimeOfDay(*in.Time)
			targetTime = t
			patch.Time = &t
		}
		if err := validate.Future(targetDate, targetTime, s.now()); err != nil {
			return store.UpdatePatch{}, err
		}
		if err := validate.WithinBusinessHours(targetTime, s.cfg.StartHour, s.cfg.EndHour); err != nil {
			return store.UpdatePatch{}, err
		}
		if err := validate.SlotGranular(targetTime, s.cfg.GranularityMinutes); err != nil {
			return store.UpdatePatch{}, err
		}
	}

	if in.Notes != nil {
		patch.Notes = in.Notes
	}
	return patch, nil
}

// freeSlots is the availability computation: grid minus occupied, minus
// already-past slots when the date is today in the operating zone.
func (s *Service) freeSlots(ctx context.Context, d domain.Date) ([]domain.TimeOfDay, error) {
	occupied, err := s.ledger.ScheduledTimes(ctx, d)
	if err != nil {
		return nil, err
	}
	taken := make(map[domain.TimeOfDay]struct{}, len(occupied))
	for _, t := range occupied {
		taken[t] = struct{}{}
	}

	now := s.now()
	isToday := d == domain.DateOf(now)
	clock := domain.TimeOfDayOf(now)

	var out []domain.TimeOfDay
	for _, t := range schedule.Grid(s.cfg.StartHour, s.cfg.EndHour, s.cfg.GranularityMinutes) {
		if _, ok := taken[t]; ok {
			continue
		}
		if isToday && t <= clock {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) nearest(ctx context.Context, d domain.Date, t domain.TimeOfDay, max int) ([]domain.TimeOfDay, error) {
	free, err := s.freeSlots(ctx, d)
	if err != nil {
		return nil, err
	}
	return schedule.Nearest(free, t, max), nil
}

// conflict builds the ConflictError for a lost slot, best-effort attaching
// alternatives (a failed suggestion query must not mask the conflict).
func (s *Service) conflict(ctx context.Context, d domain.Date, t domain.TimeOfDay) error {
	alts, err := s.nearest(ctx, d, t, store.DefaultSuggestions)
	if err != nil {
		s.log.Warn("nearest slot lookup failed", slog.Any("err", err))
		alts = nil
	}
	return &ConflictError{Date: d, Time: t, Alternatives: alts}
}

func parseStatus(s string) (domain.AppointmentStatus, error) {
	switch domain.AppointmentStatus(s) {
	case domain.StatusScheduled:
		return domain.StatusScheduled, nil
	case domain.StatusCancelled:
		return domain.StatusCancelled, nil
	default:
		return "", &ValidationError{msg: "Status must be one of: scheduled, cancelled."}
	}
}

// ValidationError mirrors validate.Error for rules that need record context
// (status transitions) and so live here rather than in the pure validator.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"slotd/backend/internal/domain"
	"slotd/backend/internal/store"
)

// AppointmentRepo is the Postgres booking ledger. Writes run inside a
// transaction holding an advisory lock on the target slot, and the partial
// unique index backstops the invariant even if a code path skips the lock.
type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.inSlotTransaction(ctx, appt.Date, appt.Time, func(ctx context.Context, tx bun.Tx) error {
		occupied, err := slotOccupied(ctx, tx, appt.Date, appt.Time, 0)
		if err != nil {
			return err
		}
		if occupied {
			return store.ErrConflict
		}

		m := appt
		m.ID = 0
		m.Status = domain.StatusScheduled
		if _, err := tx.NewInsert().Model(&m).Returning("id, created_at").Exec(ctx); err != nil {
			return translateError(err)
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.db.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, id int64, patch store.UpdatePatch) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var cur domain.Appointment
		err := tx.NewSelect().
			Model(&cur).
			Where("id = ?", id).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return err
		}

		next, columns := applyPatch(cur, patch)
		if len(columns) == 0 {
			out = cur
			return nil
		}

		movedSlot := (next.Date != cur.Date || next.Time != cur.Time)
		if movedSlot && next.Status == domain.StatusScheduled {
			if err := lockSlot(ctx, tx, next.Date, next.Time); err != nil {
				return err
			}
			occupied, err := slotOccupied(ctx, tx, next.Date, next.Time, id)
			if err != nil {
				return err
			}
			if occupied {
				return store.ErrConflict
			}
		}

		q := tx.NewUpdate().Model(&next).WherePK()
		for _, c := range columns {
			q = q.Column(c)
		}
		if _, err := q.Exec(ctx); err != nil {
			return translateError(err)
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) Cancel(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("status = ?", domain.StatusCancelled).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) ListByDate(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("appointment_date = ?", date).
		Where("status = ?", domain.StatusScheduled).
		OrderExpr("appointment_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ScheduledTimes(ctx context.Context, date domain.Date) ([]domain.TimeOfDay, error) {
	var times []domain.TimeOfDay
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Column("appointment_time").
		Where("appointment_date = ?", date).
		Where("status = ?", domain.StatusScheduled).
		OrderExpr("appointment_time ASC").
		Scan(ctx, &times)
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *AppointmentRepo) inSlotTransaction(ctx context.Context, date domain.Date, t domain.TimeOfDay, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSlot(ctx, tx, date, t); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

// lockSlot serializes writers targeting the same (date, time) for the rest
// of the transaction.
func lockSlot(ctx context.Context, tx bun.Tx, date domain.Date, t domain.TimeOfDay) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", string(date)+" "+string(t)).Exec(ctx)
	return err
}

// slotOccupied reports whether a scheduled appointment other than excludeID
// already holds the slot.
func slotOccupied(ctx context.Context, tx bun.Tx, date domain.Date, t domain.TimeOfDay, excludeID int64) (bool, error) {
	q := tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("appointment_date = ?", date).
		Where("appointment_time = ?", t).
		Where("status = ?", domain.StatusScheduled)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	return q.Exists(ctx)
}

// applyPatch copies the patched fields onto a row snapshot and returns the
// column names to write.
func applyPatch(cur domain.Appointment, patch store.UpdatePatch) (domain.Appointment, []string) {
	next := cur
	var columns []string
	if patch.Name != nil {
		next.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.Email != nil {
		next.Email = *patch.Email
		columns = append(columns, "email")
	}
	if patch.AppointmentType != nil {
		next.AppointmentType = *patch.AppointmentType
		columns = append(columns, "appointment_type")
	}
	if patch.Date != nil {
		next.Date = *patch.Date
		columns = append(columns, "appointment_date")
	}
	if patch.Time != nil {
		next.Time = *patch.Time
		columns = append(columns, "appointment_time")
	}
	if patch.Status != nil {
		next.Status = *patch.Status
		columns = append(columns, "status")
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
		columns = append(columns, "notes")
	}
	return next, columns
}

// translateError maps a unique violation on the active-slot index to
// store.ErrConflict; everything else surfaces as a store failure.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == activeSlotIndex {
			return store.ErrConflict
		}
	}
	return err
}

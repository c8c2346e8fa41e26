package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCancelled AppointmentStatus = "cancelled"
)

type AppointmentType string

const (
	TypeTelephonic AppointmentType = "telephonic"
	TypeVirtual    AppointmentType = "virtual"
)

// AppointmentTypes lists the accepted appointment types in canonical form.
var AppointmentTypes = []AppointmentType{TypeTelephonic, TypeVirtual}

// Appointment is the persisted booking record. Cancelled rows are retained
// for audit and never deleted; only rows with StatusScheduled occupy a slot.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID              int64             `bun:"id,pk,autoincrement"`
	Name            string            `bun:"name,notnull"`
	Email           string            `bun:"email,notnull"`
	AppointmentType AppointmentType   `bun:"appointment_type,notnull"`
	Date            Date              `bun:"appointment_date,notnull"`
	Time            TimeOfDay         `bun:"appointment_time,notnull"`
	Status          AppointmentStatus `bun:"status,notnull,default:'scheduled'"`
	CreatedAt       time.Time         `bun:"created_at,notnull"`
	Notes           string            `bun:"notes"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if a.Status == "" {
			a.Status = StatusScheduled
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

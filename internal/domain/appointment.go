package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// OccupyingStatuses are the statuses that consume a slot.
var OccupyingStatuses = []AppointmentStatus{AppointmentStatusConfirmed, AppointmentStatusCompleted}

func (s AppointmentStatus) Occupies() bool {
	return s == AppointmentStatusConfirmed || s == AppointmentStatusCompleted
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID            uuid.UUID         `bun:"id,pk,type:uuid"`
	StaffID       string            `bun:"staff_id,notnull"`
	Location      Location          `bun:"location,notnull"`
	Date          Date              `bun:"date,type:date,notnull"`
	Time          TimeOfDay         `bun:"slot_time,type:time,notnull"`
	Status        AppointmentStatus `bun:"status,notnull"`
	CustomerName  string            `bun:"customer_name,notnull"`
	CustomerPhone string            `bun:"customer_phone"`
	CustomerEmail string            `bun:"customer_email"`
	Notes         string            `bun:"notes"`
	CreatedAt     time.Time         `bun:"created_at,notnull"`
	UpdatedAt     time.Time         `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

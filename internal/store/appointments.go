package store

import (
	"context"

	"github.com/google/uuid"

	"barbershop/backend/internal/domain"
)

// AppointmentFilter narrows appointment listings. Zero fields match
// everything; From and To are inclusive.
type AppointmentFilter struct {
	StaffID  string
	Location domain.Location
	From     domain.Date
	To       domain.Date
	Statuses []domain.AppointmentStatus
}

type AppointmentRepository interface {
	List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
	// IsOccupied reports whether a confirmed or completed appointment holds
	// the slot. Stored seconds are ignored.
	IsOccupied(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, location domain.Location) (bool, error)
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// SetStatus moves an appointment to status if its current status is one
	// of from. ErrConflict means it exists in some other status.
	SetStatus(ctx context.Context, id uuid.UUID, from []domain.AppointmentStatus, status domain.AppointmentStatus) (domain.Appointment, error)
}

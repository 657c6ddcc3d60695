package store

import (
	"context"

	"barbershop/backend/internal/domain"
)

type ScheduleRepository interface {
	// GetSchedules returns the weekly rows for one staff member ordered
	// monday first. Missing weekdays are simply absent.
	GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error)
	UpsertSchedule(ctx context.Context, schedule domain.StaffSchedule) (domain.StaffSchedule, error)
}

type BlockedSlotFilter struct {
	StaffID string
	From    domain.Date
	To      domain.Date
}

type BlockedSlotRepository interface {
	IsBlocked(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay) (bool, error)
	List(ctx context.Context, filter BlockedSlotFilter) ([]domain.BlockedSlot, error)
	// Toggle deletes the block if present and creates it otherwise, as one
	// atomic step. It returns the resulting state.
	Toggle(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, reason string) (domain.BlockState, error)
}

type StaffRepository interface {
	ListActive(ctx context.Context, location domain.Location) ([]domain.Staff, error)
	Get(ctx context.Context, staffID string) (domain.Staff, error)
}

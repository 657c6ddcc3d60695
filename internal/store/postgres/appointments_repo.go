package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/store"
)

// appointmentsSlotOccupied is the partial unique index guarding
// (staff, date, time, location) for confirmed and completed appointments.
const appointmentsSlotOccupied = "appointments_slot_occupied"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) List(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().Model(&rows)
	if filter.StaffID != "" {
		q = q.Where("staff_id = ?", filter.StaffID)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if !filter.From.IsZero() {
		q = q.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("date <= ?", filter.To)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(filter.Statuses))
	}
	err := q.OrderExpr("date ASC, slot_time ASC, staff_id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) IsOccupied(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, location domain.Location) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("staff_id = ?", staffID).
		Where("date = ?", date).
		Where(slotTimeMatches, at.String()).
		Where("location = ?", location).
		Where("status IN (?)", bun.In(domain.OccupyingStatuses)).
		Exists(ctx)
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.NewSelect().Model(&out).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Appointment{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// Create inserts a booking. Re-sending the same id with the same payload
// returns the stored row; a different payload is ErrIdempotencyConflict.
// Losing the race for an occupied slot is ErrConflict.
func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockKey(ctx, tx, slotLockKey(appt.StaffID, appt.Date, appt.Time)); err != nil {
			return err
		}

		if appt.ID != uuid.Nil {
			var existing domain.Appointment
			err := tx.NewSelect().
				Model(&existing).
				Where("id = ?", appt.ID).
				Limit(1).
				Scan(ctx)
			switch {
			case err == nil:
				if !sameBooking(existing, appt) {
					return store.ErrIdempotencyConflict
				}
				out = existing
				return nil
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		m := appt
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			if isUniqueViolation(err, appointmentsSlotOccupied) {
				return store.ErrConflict
			}
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) SetStatus(ctx context.Context, id uuid.UUID, from []domain.AppointmentStatus, status domain.AppointmentStatus) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current domain.Appointment
		err := tx.NewSelect().
			Model(&current).
			Where("id = ?", id).
			For("UPDATE").
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		if current.Status == status {
			out = current
			return nil
		}
		if !containsStatus(from, current.Status) {
			return store.ErrConflict
		}

		current.Status = status
		_, err = tx.NewUpdate().
			Model(&current).
			Column("status", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		out = current
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func sameBooking(a, b domain.Appointment) bool {
	return a.StaffID == b.StaffID &&
		a.Location == b.Location &&
		a.Date == b.Date &&
		a.Time == b.Time &&
		a.CustomerName == b.CustomerName &&
		a.CustomerPhone == b.CustomerPhone &&
		a.CustomerEmail == b.CustomerEmail &&
		a.Notes == b.Notes
}

func containsStatus(list []domain.AppointmentStatus, s domain.AppointmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func slotLockKey(staffID string, date domain.Date, at domain.TimeOfDay) string {
	return "slot:" + staffID + ":" + date.String() + ":" + at.String()
}

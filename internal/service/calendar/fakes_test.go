package calendar

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/events"
	"barbershop/backend/internal/store"
)

type fakeSchedules struct {
	getFn func(ctx context.Context, staffID string) ([]domain.StaffSchedule, error)
}

func (f *fakeSchedules) GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error) {
	if f.getFn == nil {
		panic("GetSchedules not configured")
	}
	return f.getFn(ctx, staffID)
}

func (f *fakeSchedules) UpsertSchedule(ctx context.Context, s domain.StaffSchedule) (domain.StaffSchedule, error) {
	panic("UpsertSchedule not configured")
}

type fakeAppointments struct {
	listFn       func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error)
	isOccupiedFn func(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, location domain.Location) (bool, error)
}

func (f *fakeAppointments) List(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, filter)
}

func (f *fakeAppointments) IsOccupied(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, location domain.Location) (bool, error) {
	if f.isOccupiedFn == nil {
		panic("IsOccupied not configured")
	}
	return f.isOccupiedFn(ctx, staffID, date, at, location)
}

func (f *fakeAppointments) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	panic("Create not configured")
}

func (f *fakeAppointments) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	panic("Get not configured")
}

func (f *fakeAppointments) SetStatus(ctx context.Context, id uuid.UUID, from []domain.AppointmentStatus, status domain.AppointmentStatus) (domain.Appointment, error) {
	panic("SetStatus not configured")
}

// memAppointments answers occupancy from a slice, applying the same
// matching rules as the postgres repository.
type memAppointments struct {
	fakeAppointments
	rows []domain.Appointment
}

func newMemAppointments(rows ...domain.Appointment) *memAppointments {
	m := &memAppointments{rows: rows}
	m.isOccupiedFn = func(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, location domain.Location) (bool, error) {
		for _, a := range m.rows {
			if a.StaffID == staffID && a.Date == date && a.Time == at && a.Location == location && a.Status.Occupies() {
				return true, nil
			}
		}
		return false, nil
	}
	m.listFn = func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
		var out []domain.Appointment
		for _, a := range m.rows {
			if filter.StaffID != "" && a.StaffID != filter.StaffID {
				continue
			}
			if filter.Location != "" && a.Location != filter.Location {
				continue
			}
			if a.Date != filter.From || !a.Status.Occupies() {
				continue
			}
			out = append(out, a)
		}
		return out, nil
	}
	return m
}

// memBlocks is an in-memory blocked slot store with an atomic toggle.
type memBlocks struct {
	mu      sync.Mutex
	rows    map[string]domain.BlockedSlot
	listErr error
}

func newMemBlocks(rows ...domain.BlockedSlot) *memBlocks {
	m := &memBlocks{rows: map[string]domain.BlockedSlot{}}
	for _, r := range rows {
		m.rows[blockKey(r.StaffID, r.Date, r.Time)] = r
	}
	return m
}

func blockKey(staffID string, date domain.Date, at domain.TimeOfDay) string {
	return staffID + "|" + date.String() + "|" + at.String()
}

func (m *memBlocks) IsBlocked(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[blockKey(staffID, date, at)]
	return ok, nil
}

func (m *memBlocks) List(ctx context.Context, filter store.BlockedSlotFilter) ([]domain.BlockedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.BlockedSlot
	for _, r := range m.rows {
		if filter.StaffID != "" && r.StaffID != filter.StaffID {
			continue
		}
		if !filter.From.IsZero() && r.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && filter.To.Before(r.Date) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memBlocks) Toggle(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, reason string) (domain.BlockState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := blockKey(staffID, date, at)
	if _, ok := m.rows[k]; ok {
		delete(m.rows, k)
		return domain.BlockStateUnblocked, nil
	}
	m.rows[k] = domain.BlockedSlot{StaffID: staffID, Date: date, Time: at, Reason: reason}
	return domain.BlockStateBlocked, nil
}

type fakeStaff struct {
	listActiveFn func(ctx context.Context, location domain.Location) ([]domain.Staff, error)
	getFn        func(ctx context.Context, staffID string) (domain.Staff, error)
}

func (f *fakeStaff) ListActive(ctx context.Context, location domain.Location) ([]domain.Staff, error) {
	if f.listActiveFn == nil {
		panic("ListActive not configured")
	}
	return f.listActiveFn(ctx, location)
}

func (f *fakeStaff) Get(ctx context.Context, staffID string) (domain.Staff, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, staffID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

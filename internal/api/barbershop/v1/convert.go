package barbershopv1

import (
	"time"

	"barbershop/backend/internal/availability"
	"barbershop/backend/internal/domain"
)

func FromAppointment(a domain.Appointment) Appointment {
	out := Appointment{
		ID:            a.ID.String(),
		StaffID:       a.StaffID,
		Location:      string(a.Location),
		Date:          a.Date.String(),
		Time:          a.Time.String(),
		Status:        string(a.Status),
		CustomerName:  a.CustomerName,
		CustomerPhone: a.CustomerPhone,
		CustomerEmail: a.CustomerEmail,
		Notes:         a.Notes,
	}
	if !a.CreatedAt.IsZero() {
		out.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func FromSchedule(s domain.StaffSchedule) Schedule {
	return Schedule{
		StaffID:    s.StaffID,
		DayOfWeek:  string(s.DayOfWeek),
		IsWorking:  s.IsWorking,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		BreakStart: s.BreakStart,
		BreakEnd:   s.BreakEnd,
	}
}

func FromSchedules(rows []domain.StaffSchedule) []Schedule {
	out := make([]Schedule, 0, len(rows))
	for _, s := range rows {
		out = append(out, FromSchedule(s))
	}
	return out
}

func FromBlockedSlots(rows []domain.BlockedSlot) []BlockedSlot {
	out := make([]BlockedSlot, 0, len(rows))
	for _, b := range rows {
		out = append(out, BlockedSlot{
			ID:      b.ID.String(),
			StaffID: b.StaffID,
			Date:    b.Date.String(),
			Time:    b.Time.String(),
			Reason:  b.Reason,
		})
	}
	return out
}

func FromSlots(slots []domain.TimeOfDay) []string {
	out := make([]string, 0, len(slots))
	for _, t := range slots {
		out = append(out, t.String())
	}
	return out
}

func FromGrid(g availability.Grid) GetGridResponse {
	out := GetGridResponse{
		Location: string(g.Location),
		Date:     g.Date.String(),
		Staff:    make([]GridStaff, 0, len(g.Staff)),
		Rows:     make([]GridRow, 0, len(g.Times)),
	}
	for _, st := range g.Staff {
		out.Staff = append(out.Staff, GridStaff{ID: st.ID, Name: st.Name})
	}
	for r, t := range g.Times {
		cells := make([]string, len(g.Cells[r]))
		for c, state := range g.Cells[r] {
			cells[c] = string(state)
		}
		out.Rows = append(out.Rows, GridRow{
			Time:      t.String(),
			Cells:     cells,
			Available: g.HasAvailability(r),
		})
	}
	return out
}

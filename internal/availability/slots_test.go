package availability

import (
	"errors"
	"testing"

	"barbershop/backend/internal/domain"
)

func workingDay(start, end, breakStart, breakEnd string) *domain.StaffSchedule {
	return &domain.StaffSchedule{
		StaffID:    "a",
		DayOfWeek:  domain.Monday,
		IsWorking:  true,
		StartTime:  start,
		EndTime:    end,
		BreakStart: breakStart,
		BreakEnd:   breakEnd,
	}
}

func formatSlots(slots []domain.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name     string
		schedule *domain.StaffSchedule
		want     []string
	}{
		{
			name:     "no break",
			schedule: workingDay("09:00", "13:00", "", ""),
			want:     []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30"},
		},
		{
			name:     "break removes covered slots",
			schedule: workingDay("09:00", "13:00", "11:00", "12:00"),
			want:     []string{"09:00", "09:30", "10:00", "10:30", "12:00", "12:30"},
		},
		{
			name:     "unaligned break removes any overlapping slot",
			schedule: workingDay("09:00", "12:00", "10:15", "10:45"),
			want:     []string{"09:00", "09:30", "11:00", "11:30"},
		},
		{
			name:     "slot may start just before end",
			schedule: workingDay("09:00", "10:15", "", ""),
			want:     []string{"09:00", "09:30", "10:00"},
		},
		{
			name:     "seconds in stored times are truncated",
			schedule: workingDay("09:00:00", "10:00:00", "", ""),
			want:     []string{"09:00", "09:30"},
		},
		{
			name:     "inverted break is ignored",
			schedule: workingDay("09:00", "10:00", "09:30", "09:00"),
			want:     []string{"09:00", "09:30"},
		},
		{
			name:     "half-specified break is ignored",
			schedule: workingDay("09:00", "10:00", "09:30", ""),
			want:     []string{"09:00", "09:30"},
		},
		{
			name:     "break spilling past end still applies",
			schedule: workingDay("09:00", "11:00", "10:30", "11:30"),
			want:     []string{"09:00", "09:30", "10:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSlots(tt.schedule)
			if err != nil {
				t.Fatalf("GenerateSlots error: %v", err)
			}
			if !equalStrings(formatSlots(got), tt.want) {
				t.Fatalf("slots = %v, want %v", formatSlots(got), tt.want)
			}
		})
	}
}

func TestGenerateSlots_NotWorkingIsEmpty(t *testing.T) {
	s := workingDay("09:00", "17:00", "12:00", "13:00")
	s.IsWorking = false
	got, err := GenerateSlots(s)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("slots = %v, want none", formatSlots(got))
	}

	got, err = GenerateSlots(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("nil schedule = %v, %v; want none", got, err)
	}

	// Garbage times on a day off are irrelevant.
	off := &domain.StaffSchedule{StaffID: "a", DayOfWeek: domain.Sunday, StartTime: "garbage"}
	if _, err := GenerateSlots(off); err != nil {
		t.Fatalf("GenerateSlots(off) error: %v", err)
	}
}

func TestGenerateSlots_Invariants(t *testing.T) {
	schedules := []*domain.StaffSchedule{
		workingDay("08:00", "18:00", "12:00", "13:00"),
		workingDay("07:30", "19:45", "11:10", "11:50"),
		workingDay("10:00", "14:00", "13:30", "14:30"),
		workingDay("06:00", "06:30", "", ""),
	}

	for _, s := range schedules {
		slots, err := GenerateSlots(s)
		if err != nil {
			t.Fatalf("GenerateSlots error: %v", err)
		}
		end, _ := domain.ParseTimeOfDay(s.EndTime)
		bs, _ := domain.ParseTimeOfDay(s.BreakStart)
		be, _ := domain.ParseTimeOfDay(s.BreakEnd)
		for i, slot := range slots {
			if i > 0 && slots[i-1] >= slot {
				t.Fatalf("slots not strictly increasing: %v", formatSlots(slots))
			}
			if slot >= end {
				t.Fatalf("slot %s starts at or after end %s", slot, s.EndTime)
			}
			if s.BreakStart != "" && slot >= bs && slot < be {
				t.Fatalf("slot %s starts inside break %s-%s", slot, s.BreakStart, s.BreakEnd)
			}
		}
	}
}

func TestGenerateSlots_DataIntegrityErrors(t *testing.T) {
	tests := []struct {
		name      string
		schedule  *domain.StaffSchedule
		wantField string
	}{
		{name: "bad start", schedule: workingDay("9am", "17:00", "", ""), wantField: "start_time"},
		{name: "missing end", schedule: workingDay("09:00", "", "", ""), wantField: "end_time"},
		{name: "end before start", schedule: workingDay("17:00", "09:00", "", ""), wantField: "end_time"},
		{name: "bad break", schedule: workingDay("09:00", "17:00", "12:00", "lunch"), wantField: "break_end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSlots(tt.schedule)
			var dErr *domain.DataIntegrityError
			if !errors.As(err, &dErr) {
				t.Fatalf("error = %v, want *domain.DataIntegrityError", err)
			}
			if dErr.Field != tt.wantField || dErr.StaffID != "a" || dErr.Weekday != domain.Monday {
				t.Fatalf("error = %+v, want field %q for a/monday", dErr, tt.wantField)
			}
		})
	}
}

func TestSlotsForDate(t *testing.T) {
	schedules := []domain.StaffSchedule{
		*workingDay("09:00", "10:00", "", ""),
		{StaffID: "a", DayOfWeek: domain.Tuesday, IsWorking: false},
	}
	monday, _ := domain.ParseDate("2026-10-12")

	got, err := SlotsForDate(schedules, monday)
	if err != nil {
		t.Fatalf("SlotsForDate error: %v", err)
	}
	if !equalStrings(formatSlots(got), []string{"09:00", "09:30"}) {
		t.Fatalf("monday slots = %v", formatSlots(got))
	}

	for _, d := range []string{"2026-10-13", "2026-10-14"} {
		date, _ := domain.ParseDate(d)
		got, err := SlotsForDate(schedules, date)
		if err != nil || len(got) != 0 {
			t.Fatalf("%s slots = %v, %v; want none", d, formatSlots(got), err)
		}
	}
}

func TestMergeSlots(t *testing.T) {
	a := []domain.TimeOfDay{domain.NewTimeOfDay(9, 0), domain.NewTimeOfDay(10, 0)}
	b := []domain.TimeOfDay{domain.NewTimeOfDay(8, 30), domain.NewTimeOfDay(10, 0)}
	got := MergeSlots(a, b, nil)
	if !equalStrings(formatSlots(got), []string{"08:30", "09:00", "10:00"}) {
		t.Fatalf("merged = %v", formatSlots(got))
	}
}

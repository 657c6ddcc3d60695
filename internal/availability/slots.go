// Package availability computes bookable slots from weekly schedules,
// appointments and manual blocks. Everything here is pure; callers load
// the inputs.
package availability

import (
	"sort"
	"time"

	"barbershop/backend/internal/domain"
)

// SlotLength is the bookable unit.
const SlotLength = 30 * time.Minute

type window struct {
	start, end           domain.TimeOfDay
	breakStart, breakEnd domain.TimeOfDay
	hasBreak             bool
}

// GenerateSlots returns the ordered slot start times for one weekday
// schedule. A nil or non-working schedule yields no slots. Unparseable
// times are reported as *domain.DataIntegrityError.
func GenerateSlots(s *domain.StaffSchedule) ([]domain.TimeOfDay, error) {
	if s == nil || !s.IsWorking {
		return nil, nil
	}
	w, err := parseWindow(s)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TimeOfDay, 0, int(w.end-w.start)/int(SlotLength/time.Minute)+1)
	for t := w.start; t < w.end; t = t.Add(SlotLength) {
		if w.hasBreak && t < w.breakEnd && t.Add(SlotLength) > w.breakStart {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// SlotsForDate picks the schedule matching date's weekday and generates
// its slots. A missing weekday means the staff member is off.
func SlotsForDate(schedules []domain.StaffSchedule, date domain.Date) ([]domain.TimeOfDay, error) {
	day := date.Weekday()
	for i := range schedules {
		if schedules[i].DayOfWeek == day {
			return GenerateSlots(&schedules[i])
		}
	}
	return nil, nil
}

func parseWindow(s *domain.StaffSchedule) (window, error) {
	var w window
	var err error

	if w.start, err = parseField(s, "start_time", s.StartTime); err != nil {
		return window{}, err
	}
	if w.end, err = parseField(s, "end_time", s.EndTime); err != nil {
		return window{}, err
	}
	if w.start >= w.end {
		return window{}, &domain.DataIntegrityError{
			StaffID: s.StaffID,
			Weekday: s.DayOfWeek,
			Field:   "end_time",
			Value:   s.EndTime,
		}
	}

	// A half-specified or inverted break is ignored. A well-formed break
	// that spills past the working window is still applied, which can only
	// remove slots.
	if s.BreakStart == "" || s.BreakEnd == "" {
		return w, nil
	}
	if w.breakStart, err = parseField(s, "break_start", s.BreakStart); err != nil {
		return window{}, err
	}
	if w.breakEnd, err = parseField(s, "break_end", s.BreakEnd); err != nil {
		return window{}, err
	}
	w.hasBreak = w.breakStart < w.breakEnd
	return w, nil
}

func parseField(s *domain.StaffSchedule, field, value string) (domain.TimeOfDay, error) {
	t, err := domain.ParseTimeOfDay(value)
	if err != nil {
		return 0, &domain.DataIntegrityError{
			StaffID: s.StaffID,
			Weekday: s.DayOfWeek,
			Field:   field,
			Value:   value,
			Err:     err,
		}
	}
	return t, nil
}

// Contains reports whether t is one of the generated slots.
func Contains(slots []domain.TimeOfDay, t domain.TimeOfDay) bool {
	i := sort.Search(len(slots), func(i int) bool { return slots[i] >= t })
	return i < len(slots) && slots[i] == t
}

// MergeSlots returns the sorted, de-duplicated union of several slot lists.
func MergeSlots(lists ...[]domain.TimeOfDay) []domain.TimeOfDay {
	seen := make(map[domain.TimeOfDay]struct{})
	var out []domain.TimeOfDay
	for _, l := range lists {
		for _, t := range l {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

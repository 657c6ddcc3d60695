package availability

import (
	"time"

	"barbershop/backend/internal/domain"
)

// Reason names the rule that decided a slot's availability.
type Reason string

const (
	ReasonAvailable  Reason = "available"
	ReasonTooSoon    Reason = "too_soon"
	ReasonNotWorking Reason = "not_working"
	ReasonBooked     Reason = "booked"
	ReasonBlocked    Reason = "blocked"
)

type Verdict struct {
	Available bool
	Reason    Reason
}

func unavailable(r Reason) Verdict {
	return Verdict{Reason: r}
}

var available = Verdict{Available: true, Reason: ReasonAvailable}

// DefaultCutoff is the minimum lead time for same-day bookings.
const DefaultCutoff = 30 * time.Minute

// Cutoff applies the same-day lead time rule. Dates other than today in
// Location are never affected, including past dates.
type Cutoff struct {
	Location *time.Location
	Margin   time.Duration
}

func (c Cutoff) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Today returns the current calendar date in the cutoff's location.
func (c Cutoff) Today(now time.Time) domain.Date {
	return domain.DateOf(now.In(c.loc()))
}

// TooSoon reports whether a slot on today's date starts less than Margin
// after now.
func (c Cutoff) TooSoon(date domain.Date, at domain.TimeOfDay, now time.Time) bool {
	if date != c.Today(now) {
		return false
	}
	return date.At(at, c.loc()).Before(now.Add(c.Margin))
}

// TimeSet is a set of slot start times.
type TimeSet map[domain.TimeOfDay]struct{}

func (s TimeSet) Has(t domain.TimeOfDay) bool {
	_, ok := s[t]
	return ok
}

// BookedTimes folds appointments into the set of occupied times at
// location. Cancelled appointments and other locations are ignored.
func BookedTimes(appts []domain.Appointment, location domain.Location) TimeSet {
	out := make(TimeSet, len(appts))
	for _, a := range appts {
		if a.Location != location || !a.Status.Occupies() {
			continue
		}
		out[a.Time] = struct{}{}
	}
	return out
}

func BlockedTimes(blocks []domain.BlockedSlot) TimeSet {
	out := make(TimeSet, len(blocks))
	for _, b := range blocks {
		out[b.Time] = struct{}{}
	}
	return out
}

// Day is everything needed to evaluate one staff member's slots on one
// date at one location.
type Day struct {
	StaffID  string
	Date     domain.Date
	Location domain.Location
	Slots    []domain.TimeOfDay
	Booked   TimeSet
	Blocked  TimeSet
}

// Evaluate applies the availability rules in order: same-day cutoff,
// schedule membership, occupancy, manual block.
func (d Day) Evaluate(at domain.TimeOfDay, now time.Time, cutoff Cutoff) Verdict {
	if cutoff.TooSoon(d.Date, at, now) {
		return unavailable(ReasonTooSoon)
	}
	if !Contains(d.Slots, at) {
		return unavailable(ReasonNotWorking)
	}
	if d.Booked.Has(at) {
		return unavailable(ReasonBooked)
	}
	if d.Blocked.Has(at) {
		return unavailable(ReasonBlocked)
	}
	return available
}

// Available lists the slots that evaluate as available, in order.
func (d Day) Available(now time.Time, cutoff Cutoff) []domain.TimeOfDay {
	out := make([]domain.TimeOfDay, 0, len(d.Slots))
	for _, t := range d.Slots {
		if d.Evaluate(t, now, cutoff).Available {
			out = append(out, t)
		}
	}
	return out
}

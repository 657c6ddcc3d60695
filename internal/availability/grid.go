package availability

import (
	"time"

	"barbershop/backend/internal/domain"
)

type CellState string

const (
	CellAvailable  CellState = "available"
	CellBooked     CellState = "booked"
	CellBlocked    CellState = "blocked"
	CellNotWorking CellState = "not_working"
	// CellElapsed marks a working, free slot that is already inside
	// today's booking cutoff.
	CellElapsed CellState = "elapsed"
)

// Grid is the admin calendar for one location and date. Rows are the
// union of all staff slots, columns follow Staff.
type Grid struct {
	Location domain.Location
	Date     domain.Date
	Staff    []domain.Staff
	Times    []domain.TimeOfDay
	Cells    [][]CellState
}

func (g Grid) Cell(row, col int) CellState {
	return g.Cells[row][col]
}

// HasAvailability reports whether any staff member is free at row.
func (g Grid) HasAvailability(row int) bool {
	for _, c := range g.Cells[row] {
		if c == CellAvailable {
			return true
		}
	}
	return false
}

// BuildGrid folds per-staff days into a grid. days[i] belongs to staff[i].
func BuildGrid(location domain.Location, date domain.Date, staff []domain.Staff, days []Day, now time.Time, cutoff Cutoff) Grid {
	lists := make([][]domain.TimeOfDay, 0, len(days))
	for _, d := range days {
		lists = append(lists, d.Slots)
	}
	times := MergeSlots(lists...)

	cells := make([][]CellState, len(times))
	for r, t := range times {
		row := make([]CellState, len(days))
		for c, d := range days {
			row[c] = cellState(d, t, now, cutoff)
		}
		cells[r] = row
	}

	return Grid{
		Location: location,
		Date:     date,
		Staff:    staff,
		Times:    times,
		Cells:    cells,
	}
}

func cellState(d Day, t domain.TimeOfDay, now time.Time, cutoff Cutoff) CellState {
	switch {
	case !Contains(d.Slots, t):
		return CellNotWorking
	case d.Booked.Has(t):
		return CellBooked
	case d.Blocked.Has(t):
		return CellBlocked
	case cutoff.TooSoon(d.Date, t, now):
		return CellElapsed
	default:
		return CellAvailable
	}
}

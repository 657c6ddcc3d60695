package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StaffSchedule is one staff member's recurring hours for one weekday.
// Times are stored as "HH:MM" strings and parsed when slots are generated.
type StaffSchedule struct {
	bun.BaseModel `bun:"table:staff_schedules"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	StaffID    string    `bun:"staff_id,notnull"`
	DayOfWeek  Weekday   `bun:"day_of_week,notnull"`
	IsWorking  bool      `bun:"is_working,notnull"`
	StartTime  string    `bun:"start_time,nullzero"`
	EndTime    string    `bun:"end_time,nullzero"`
	BreakStart string    `bun:"break_start,nullzero"`
	BreakEnd   string    `bun:"break_end,nullzero"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

func (s *StaffSchedule) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

package postgres

import (
	"context"
	"sort"

	"github.com/uptrace/bun"

	"barbershop/backend/internal/domain"
)

type ScheduleRepo struct {
	db *bun.DB
}

func NewScheduleRepo(db *bun.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func (r *ScheduleRepo) GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error) {
	var rows []domain.StaffSchedule
	err := r.db.NewSelect().
		Model(&rows).
		Where("staff_id = ?", staffID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	sortByWeekday(rows)
	return rows, nil
}

// UpsertSchedule replaces the row for (staff, weekday).
func (r *ScheduleRepo) UpsertSchedule(ctx context.Context, schedule domain.StaffSchedule) (domain.StaffSchedule, error) {
	m := schedule
	_, err := r.db.NewInsert().
		Model(&m).
		On("CONFLICT (staff_id, day_of_week) DO UPDATE").
		Set("is_working = EXCLUDED.is_working").
		Set("start_time = EXCLUDED.start_time").
		Set("end_time = EXCLUDED.end_time").
		Set("break_start = EXCLUDED.break_start").
		Set("break_end = EXCLUDED.break_end").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.StaffSchedule{}, err
	}
	return m, nil
}

func sortByWeekday(rows []domain.StaffSchedule) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DayOfWeek.Index() < rows[j].DayOfWeek.Index()
	})
}

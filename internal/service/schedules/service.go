// Package schedules manages staff weekly working hours.
package schedules

import (
	"context"
	"log/slog"
	"strings"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	repo   store.ScheduleRepository
	staff  store.StaffRepository
	logger *slog.Logger
}

// NewService takes the cached repository in production so writes here
// invalidate what availability queries read.
func NewService(repo store.ScheduleRepository, staff store.StaffRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, staff: staff, logger: logger.With("component", "schedules")}
}

func (s *Service) GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return nil, validationError("staff_id is required")
	}
	return s.repo.GetSchedules(ctx, staffID)
}

type UpsertInput struct {
	StaffID    string
	DayOfWeek  string
	IsWorking  bool
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
}

// UpsertSchedule stores one weekday. Working days need a start before
// their end and an optional break given as a pair inside the window. Days
// off are stored without times.
func (s *Service) UpsertSchedule(ctx context.Context, in UpsertInput) (domain.StaffSchedule, error) {
	staffID := strings.TrimSpace(in.StaffID)
	if staffID == "" {
		return domain.StaffSchedule{}, validationError("staff_id is required")
	}
	day, err := domain.ParseWeekday(in.DayOfWeek)
	if err != nil {
		return domain.StaffSchedule{}, validationError("invalid day_of_week")
	}

	sched := domain.StaffSchedule{StaffID: staffID, DayOfWeek: day, IsWorking: in.IsWorking}
	if in.IsWorking {
		if err := normalizeHours(&sched, in); err != nil {
			return domain.StaffSchedule{}, err
		}
	}

	if _, err := s.staff.Get(ctx, staffID); err != nil {
		return domain.StaffSchedule{}, err
	}

	out, err := s.repo.UpsertSchedule(ctx, sched)
	if err != nil {
		return domain.StaffSchedule{}, err
	}
	s.logger.InfoContext(ctx, "schedule updated", "staff_id", staffID, "day_of_week", string(day), "is_working", sched.IsWorking)
	return out, nil
}

func normalizeHours(sched *domain.StaffSchedule, in UpsertInput) error {
	start, err := parseHour("start_time", in.StartTime)
	if err != nil {
		return err
	}
	end, err := parseHour("end_time", in.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return validationError("end_time must be after start_time")
	}
	sched.StartTime = start.String()
	sched.EndTime = end.String()

	hasStart := strings.TrimSpace(in.BreakStart) != ""
	hasEnd := strings.TrimSpace(in.BreakEnd) != ""
	if hasStart != hasEnd {
		return validationError("break_start and break_end must be set together")
	}
	if !hasStart {
		return nil
	}

	bs, err := parseHour("break_start", in.BreakStart)
	if err != nil {
		return err
	}
	be, err := parseHour("break_end", in.BreakEnd)
	if err != nil {
		return err
	}
	if be <= bs {
		return validationError("break_end must be after break_start")
	}
	if bs < start || be > end {
		return validationError("break must lie within working hours")
	}
	sched.BreakStart = bs.String()
	sched.BreakEnd = be.String()
	return nil
}

func parseHour(field, raw string) (domain.TimeOfDay, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, validationError(field + " is required")
	}
	t, err := domain.ParseTimeOfDay(raw)
	if err != nil {
		return 0, validationError("invalid " + field)
	}
	return t, nil
}

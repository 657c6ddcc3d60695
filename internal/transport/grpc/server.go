package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	barbershopv1 "barbershop/backend/internal/api/barbershop/v1"
	"barbershop/backend/internal/availability"
	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/service/appointments"
	"barbershop/backend/internal/service/calendar"
	"barbershop/backend/internal/service/schedules"
	"barbershop/backend/internal/transport/apierr"
)

type calendarService interface {
	IsAvailable(ctx context.Context, q calendar.SlotQuery) (availability.Verdict, error)
	AvailableSlots(ctx context.Context, q calendar.SlotsQuery) ([]domain.TimeOfDay, error)
	Grid(ctx context.Context, q calendar.GridQuery) (availability.Grid, error)
	ToggleBlock(ctx context.Context, in calendar.ToggleInput) (domain.BlockState, error)
	ListBlockedSlots(ctx context.Context, q calendar.BlockedSlotsQuery) ([]domain.BlockedSlot, error)
}

type schedulesService interface {
	GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error)
	UpsertSchedule(ctx context.Context, in schedules.UpsertInput) (domain.StaffSchedule, error)
}

type appointmentsService interface {
	Book(ctx context.Context, in appointments.BookInput) (domain.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
}

type AvailabilityServer struct {
	barbershopv1.UnimplementedAvailabilityServiceServer

	calendar     calendarService
	schedules    schedulesService
	appointments appointmentsService
	log          *slog.Logger
}

func NewAvailabilityServer(cal calendarService, sched schedulesService, appts appointmentsService, log *slog.Logger) *AvailabilityServer {
	if log == nil {
		log = slog.Default()
	}
	return &AvailabilityServer{
		calendar:     cal,
		schedules:    sched,
		appointments: appts,
		log:          log.With(slog.String("component", "grpc.availability")),
	}
}

func (s *AvailabilityServer) IsAvailable(ctx context.Context, req *barbershopv1.IsAvailableRequest) (*barbershopv1.IsAvailableResponse, error) {
	log := s.log.With(slog.String("rpc", "IsAvailable"))
	if req == nil {
		return nil, nilRequest(log)
	}

	verdict, err := s.calendar.IsAvailable(ctx, calendar.SlotQuery{
		StaffID:  req.StaffID,
		Date:     req.Date,
		Time:     req.Time,
		Location: req.Location,
	})
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("staff_id", req.StaffID), slog.String("date", req.Date), slog.String("time", req.Time))
	}

	log.Debug("availability checked",
		slog.String("staff_id", req.StaffID),
		slog.String("date", req.Date),
		slog.String("time", req.Time),
		slog.String("reason", string(verdict.Reason)),
	)
	return &barbershopv1.IsAvailableResponse{Available: verdict.Available, Reason: string(verdict.Reason)}, nil
}

func (s *AvailabilityServer) ListAvailableSlots(ctx context.Context, req *barbershopv1.ListAvailableSlotsRequest) (*barbershopv1.ListAvailableSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAvailableSlots"))
	if req == nil {
		return nil, nilRequest(log)
	}

	slots, err := s.calendar.AvailableSlots(ctx, calendar.SlotsQuery{
		StaffID:  req.StaffID,
		Date:     req.Date,
		Location: req.Location,
	})
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("staff_id", req.StaffID), slog.String("date", req.Date))
	}

	log.Debug("slots listed", slog.String("staff_id", req.StaffID), slog.String("date", req.Date), slog.Int("count", len(slots)))
	return &barbershopv1.ListAvailableSlotsResponse{
		StaffID: req.StaffID,
		Date:    req.Date,
		Slots:   barbershopv1.FromSlots(slots),
	}, nil
}

func (s *AvailabilityServer) GetGrid(ctx context.Context, req *barbershopv1.GetGridRequest) (*barbershopv1.GetGridResponse, error) {
	log := s.log.With(slog.String("rpc", "GetGrid"))
	if req == nil {
		return nil, nilRequest(log)
	}

	grid, err := s.calendar.Grid(ctx, calendar.GridQuery{Location: req.Location, Date: req.Date})
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("location", req.Location), slog.String("date", req.Date))
	}

	out := barbershopv1.FromGrid(grid)
	log.Debug("grid built",
		slog.String("location", req.Location),
		slog.String("date", req.Date),
		slog.Int("staff", len(out.Staff)),
		slog.Int("rows", len(out.Rows)),
	)
	return &out, nil
}

func (s *AvailabilityServer) ToggleBlock(ctx context.Context, req *barbershopv1.ToggleBlockRequest) (*barbershopv1.ToggleBlockResponse, error) {
	log := s.log.With(slog.String("rpc", "ToggleBlock"))
	if req == nil {
		return nil, nilRequest(log)
	}

	state, err := s.calendar.ToggleBlock(ctx, calendar.ToggleInput{
		StaffID: req.StaffID,
		Date:    req.Date,
		Time:    req.Time,
		Reason:  req.Reason,
	})
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("staff_id", req.StaffID), slog.String("date", req.Date), slog.String("time", req.Time))
	}

	log.Info("block toggled",
		slog.String("staff_id", req.StaffID),
		slog.String("date", req.Date),
		slog.String("time", req.Time),
		slog.String("state", string(state)),
	)
	return &barbershopv1.ToggleBlockResponse{State: string(state)}, nil
}

func (s *AvailabilityServer) ListBlockedSlots(ctx context.Context, req *barbershopv1.ListBlockedSlotsRequest) (*barbershopv1.ListBlockedSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListBlockedSlots"))
	if req == nil {
		return nil, nilRequest(log)
	}

	blocks, err := s.calendar.ListBlockedSlots(ctx, calendar.BlockedSlotsQuery{
		StaffID: req.StaffID,
		From:    req.From,
		To:      req.To,
	})
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("staff_id", req.StaffID))
	}

	log.Debug("blocked slots listed", slog.String("staff_id", req.StaffID), slog.Int("count", len(blocks)))
	return &barbershopv1.ListBlockedSlotsResponse{BlockedSlots: barbershopv1.FromBlockedSlots(blocks)}, nil
}

func (s *AvailabilityServer) GetSchedules(ctx context.Context, req *barbershopv1.GetSchedulesRequest) (*barbershopv1.GetSchedulesResponse, error) {
	log := s.log.With(slog.String("rpc", "GetSchedules"))
	if req == nil {
		return nil, nilRequest(log)
	}

	rows, err := s.schedules.GetSchedules(ctx, req.StaffID)
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("staff_id", req.StaffID))
	}
	return &barbershopv1.GetSchedulesResponse{Schedules: barbershopv1.FromSchedules(rows)}, nil
}

func (s *AvailabilityServer) UpsertSchedule(ctx context.Context, req *barbershopv1.UpsertScheduleRequest) (*barbershopv1.UpsertScheduleResponse, error) {
	log := s.log.With(slog.String("rpc", "UpsertSchedule"))
	if req == nil {
		return nil, nilRequest(log)
	}

	in := req.Schedule
	saved, err := s.schedules.UpsertSchedule(ctx, schedules.UpsertInput{
		StaffID:    in.StaffID,
		DayOfWeek:  in.DayOfWeek,
		IsWorking:  in.IsWorking,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		BreakStart: in.BreakStart,
		BreakEnd:   in.BreakEnd,
	})
	if err != nil {
		return nil, toStatus(log, err, "", slog.String("staff_id", in.StaffID), slog.String("day_of_week", in.DayOfWeek))
	}

	log.Info("schedule saved", slog.String("staff_id", saved.StaffID), slog.String("day_of_week", string(saved.DayOfWeek)))
	return &barbershopv1.UpsertScheduleResponse{Schedule: barbershopv1.FromSchedule(saved)}, nil
}

func (s *AvailabilityServer) Book(ctx context.Context, req *barbershopv1.BookRequest) (*barbershopv1.AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "Book"))
	if req == nil {
		return nil, nilRequest(log)
	}

	appt, err := s.appointments.Book(ctx, appointments.BookInput{
		StaffID:        req.StaffID,
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, toStatus(log, err,
			"That slot was just taken. Pick a different time.",
			slog.String("staff_id", req.StaffID),
			slog.String("date", req.Date),
			slog.String("time", req.Time),
		)
	}

	log.Info("appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("staff_id", appt.StaffID),
		slog.String("date", appt.Date.String()),
		slog.String("time", appt.Time.String()),
	)
	return &barbershopv1.AppointmentResponse{Appointment: barbershopv1.FromAppointment(appt)}, nil
}

func (s *AvailabilityServer) CancelAppointment(ctx context.Context, req *barbershopv1.AppointmentRequest) (*barbershopv1.AppointmentResponse, error) {
	return s.transition(ctx, "CancelAppointment", req, s.appointments.Cancel,
		"This appointment was already completed and cannot be cancelled.")
}

func (s *AvailabilityServer) CompleteAppointment(ctx context.Context, req *barbershopv1.AppointmentRequest) (*barbershopv1.AppointmentResponse, error) {
	return s.transition(ctx, "CompleteAppointment", req, s.appointments.Complete,
		"Only confirmed appointments can be completed.")
}

func (s *AvailabilityServer) transition(
	ctx context.Context,
	rpc string,
	req *barbershopv1.AppointmentRequest,
	apply func(context.Context, uuid.UUID) (domain.Appointment, error),
	conflictMsg string,
) (*barbershopv1.AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", rpc))
	if req == nil {
		return nil, nilRequest(log)
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}

	appt, err := apply(ctx, id)
	if err != nil {
		return nil, toStatus(log, err, conflictMsg, slog.String("appointment_id", id.String()))
	}

	log.Info("appointment updated", slog.String("appointment_id", id.String()), slog.String("status", string(appt.Status)))
	return &barbershopv1.AppointmentResponse{Appointment: barbershopv1.FromAppointment(appt)}, nil
}

func nilRequest(log *slog.Logger) error {
	log.Warn("invalid request", slog.String("reason", "nil_request"))
	return status.Error(codes.InvalidArgument, "request is required")
}

// toStatus logs err at the level its kind deserves and converts it to a
// gRPC status. conflictMsg replaces the generic conflict message when set.
func toStatus(log *slog.Logger, err error, conflictMsg string, attrs ...any) error {
	kind, msg := apierr.Classify(err)
	args := append([]any{slog.Any("err", err), slog.String("kind", kind.String())}, attrs...)

	switch kind {
	case apierr.Invalid:
		log.Warn("invalid request", args...)
		return status.Error(codes.InvalidArgument, msg)
	case apierr.NotFound:
		log.Info("not found", args...)
		return status.Error(codes.NotFound, msg)
	case apierr.Conflict:
		log.Info("conflict", args...)
		if conflictMsg != "" {
			msg = conflictMsg
		}
		return status.Error(codes.FailedPrecondition, msg)
	case apierr.IdempotencyConflict, apierr.SlotUnavailable:
		log.Info("rejected", args...)
		return status.Error(codes.FailedPrecondition, msg)
	case apierr.DataIntegrity:
		log.Error("stored data invalid", args...)
		return status.Error(codes.DataLoss, msg)
	case apierr.Timeout:
		log.Warn("request timed out", args...)
		return status.Error(codes.DeadlineExceeded, msg)
	case apierr.Canceled:
		log.Info("request canceled", args...)
		return status.Error(codes.Canceled, msg)
	default:
		log.Error("request failed", args...)
		return status.Error(codes.Unavailable, msg)
	}
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

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

type Handler struct {
	calendar     calendarService
	schedules    schedulesService
	appointments appointmentsService
	log          *slog.Logger
}

func NewHandler(cal calendarService, sched schedulesService, appts appointmentsService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		calendar:     cal,
		schedules:    sched,
		appointments: appts,
		log:          log.With(slog.String("component", "http.api")),
	}
}

// NewMux registers the API routes and the health probes.
func NewMux(h *Handler, checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	registerProbes(mux, checks)

	mux.HandleFunc("GET /api/v1/availability", h.isAvailable)
	mux.HandleFunc("GET /api/v1/slots", h.listSlots)
	mux.HandleFunc("GET /api/v1/grid", h.grid)
	mux.HandleFunc("POST /api/v1/blocks/toggle", h.toggleBlock)
	mux.HandleFunc("GET /api/v1/blocks", h.listBlocks)
	mux.HandleFunc("GET /api/v1/staff/{staffID}/schedules", h.getSchedules)
	mux.HandleFunc("PUT /api/v1/staff/{staffID}/schedules/{day}", h.upsertSchedule)
	mux.HandleFunc("POST /api/v1/bookings", h.book)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", h.cancel)
	mux.HandleFunc("POST /api/v1/bookings/{id}/complete", h.complete)
	return mux
}

func (h *Handler) isAvailable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verdict, err := h.calendar.IsAvailable(r.Context(), calendar.SlotQuery{
		StaffID:  q.Get("staff_id"),
		Date:     q.Get("date"),
		Time:     q.Get("time"),
		Location: q.Get("location"),
	})
	if err != nil {
		h.fail(w, r, "availability", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.IsAvailableResponse{
		Available: verdict.Available,
		Reason:    string(verdict.Reason),
	})
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slots, err := h.calendar.AvailableSlots(r.Context(), calendar.SlotsQuery{
		StaffID:  q.Get("staff_id"),
		Date:     q.Get("date"),
		Location: q.Get("location"),
	})
	if err != nil {
		h.fail(w, r, "slots", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.ListAvailableSlotsResponse{
		StaffID: strings.TrimSpace(q.Get("staff_id")),
		Date:    strings.TrimSpace(q.Get("date")),
		Slots:   barbershopv1.FromSlots(slots),
	})
}

func (h *Handler) grid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	grid, err := h.calendar.Grid(r.Context(), calendar.GridQuery{
		Location: q.Get("location"),
		Date:     q.Get("date"),
	})
	if err != nil {
		h.fail(w, r, "grid", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.FromGrid(grid))
}

func (h *Handler) toggleBlock(w http.ResponseWriter, r *http.Request) {
	var req barbershopv1.ToggleBlockRequest
	if !h.decode(w, r, "blocks.toggle", &req) {
		return
	}
	state, err := h.calendar.ToggleBlock(r.Context(), calendar.ToggleInput{
		StaffID: req.StaffID,
		Date:    req.Date,
		Time:    req.Time,
		Reason:  req.Reason,
	})
	if err != nil {
		h.fail(w, r, "blocks.toggle", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.ToggleBlockResponse{State: string(state)})
}

func (h *Handler) listBlocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	blocks, err := h.calendar.ListBlockedSlots(r.Context(), calendar.BlockedSlotsQuery{
		StaffID: q.Get("staff_id"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	})
	if err != nil {
		h.fail(w, r, "blocks", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.ListBlockedSlotsResponse{BlockedSlots: barbershopv1.FromBlockedSlots(blocks)})
}

func (h *Handler) getSchedules(w http.ResponseWriter, r *http.Request) {
	rows, err := h.schedules.GetSchedules(r.Context(), r.PathValue("staffID"))
	if err != nil {
		h.fail(w, r, "schedules", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.GetSchedulesResponse{Schedules: barbershopv1.FromSchedules(rows)})
}

func (h *Handler) upsertSchedule(w http.ResponseWriter, r *http.Request) {
	var req barbershopv1.Schedule
	if !h.decode(w, r, "schedules.upsert", &req) {
		return
	}
	saved, err := h.schedules.UpsertSchedule(r.Context(), schedules.UpsertInput{
		StaffID:    r.PathValue("staffID"),
		DayOfWeek:  r.PathValue("day"),
		IsWorking:  req.IsWorking,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		BreakStart: req.BreakStart,
		BreakEnd:   req.BreakEnd,
	})
	if err != nil {
		h.fail(w, r, "schedules.upsert", err, "")
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.UpsertScheduleResponse{Schedule: barbershopv1.FromSchedule(saved)})
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var req barbershopv1.BookRequest
	if !h.decode(w, r, "bookings", &req) {
		return
	}
	appt, err := h.appointments.Book(r.Context(), appointments.BookInput{
		StaffID:        req.StaffID,
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey(r),
	})
	if err != nil {
		h.fail(w, r, "bookings", err, "That slot was just taken. Pick a different time.")
		return
	}
	writeJSON(w, http.StatusCreated, barbershopv1.AppointmentResponse{Appointment: barbershopv1.FromAppointment(appt)})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "bookings.cancel", h.appointments.Cancel,
		"This appointment was already completed and cannot be cancelled.")
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "bookings.complete", h.appointments.Complete,
		"Only confirmed appointments can be completed.")
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	route string,
	apply func(context.Context, uuid.UUID) (domain.Appointment, error),
	conflictMsg string,
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.log.Warn("invalid request", slog.String("route", route), slog.String("reason", "invalid_uuid"))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "appointment id must be a UUID", Code: apierr.Invalid.String()})
		return
	}
	appt, err := apply(r.Context(), id)
	if err != nil {
		h.fail(w, r, route, err, conflictMsg)
		return
	}
	writeJSON(w, http.StatusOK, barbershopv1.AppointmentResponse{Appointment: barbershopv1.FromAppointment(appt)})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, route string, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.log.Warn("invalid request", slog.String("route", route), slog.String("reason", "body_too_large"))
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large", Code: apierr.Invalid.String()})
		return false
	}
	h.log.Warn("invalid request", slog.String("route", route), slog.String("reason", "malformed_json"), slog.Any("err", err))
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON body", Code: apierr.Invalid.String()})
	return false
}

// fail logs err at the level its kind deserves and writes the matching
// status. conflictMsg replaces the generic conflict message when set.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, route string, err error, conflictMsg string) {
	kind, msg := apierr.Classify(err)
	log := h.log.With(
		slog.String("route", route),
		slog.String("request_id", RequestIDFromContext(r.Context())),
		slog.String("kind", kind.String()),
		slog.Any("err", err),
	)

	code := http.StatusServiceUnavailable
	switch kind {
	case apierr.Invalid:
		log.Warn("invalid request")
		code = http.StatusBadRequest
	case apierr.NotFound:
		log.Info("not found")
		code = http.StatusNotFound
	case apierr.Conflict:
		log.Info("conflict")
		if conflictMsg != "" {
			msg = conflictMsg
		}
		code = http.StatusConflict
	case apierr.IdempotencyConflict, apierr.SlotUnavailable:
		log.Info("rejected")
		code = http.StatusConflict
	case apierr.DataIntegrity:
		log.Error("stored data invalid")
		code = http.StatusInternalServerError
	case apierr.Timeout:
		log.Warn("request timed out")
		code = http.StatusGatewayTimeout
	case apierr.Canceled:
		log.Info("request canceled")
		code = http.StatusRequestTimeout
	default:
		log.Error("request failed")
	}
	writeJSON(w, code, errorBody{Error: msg, Code: kind.String()})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func idempotencyKey(r *http.Request) string {
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		key = r.Header.Get("X-Idempotency-Key")
	}
	return strings.TrimSpace(key)
}

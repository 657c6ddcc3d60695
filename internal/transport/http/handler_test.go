package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"barbershop/backend/internal/availability"
	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/service/appointments"
	"barbershop/backend/internal/service/calendar"
	"barbershop/backend/internal/service/schedules"
	"barbershop/backend/internal/store"
)

type fakeCalendar struct {
	isAvailableFn      func(ctx context.Context, q calendar.SlotQuery) (availability.Verdict, error)
	availableSlotsFn   func(ctx context.Context, q calendar.SlotsQuery) ([]domain.TimeOfDay, error)
	gridFn             func(ctx context.Context, q calendar.GridQuery) (availability.Grid, error)
	toggleBlockFn      func(ctx context.Context, in calendar.ToggleInput) (domain.BlockState, error)
	listBlockedSlotsFn func(ctx context.Context, q calendar.BlockedSlotsQuery) ([]domain.BlockedSlot, error)
}

func (f *fakeCalendar) IsAvailable(ctx context.Context, q calendar.SlotQuery) (availability.Verdict, error) {
	if f.isAvailableFn == nil {
		panic("IsAvailable not configured")
	}
	return f.isAvailableFn(ctx, q)
}

func (f *fakeCalendar) AvailableSlots(ctx context.Context, q calendar.SlotsQuery) ([]domain.TimeOfDay, error) {
	if f.availableSlotsFn == nil {
		panic("AvailableSlots not configured")
	}
	return f.availableSlotsFn(ctx, q)
}

func (f *fakeCalendar) Grid(ctx context.Context, q calendar.GridQuery) (availability.Grid, error) {
	if f.gridFn == nil {
		panic("Grid not configured")
	}
	return f.gridFn(ctx, q)
}

func (f *fakeCalendar) ToggleBlock(ctx context.Context, in calendar.ToggleInput) (domain.BlockState, error) {
	if f.toggleBlockFn == nil {
		panic("ToggleBlock not configured")
	}
	return f.toggleBlockFn(ctx, in)
}

func (f *fakeCalendar) ListBlockedSlots(ctx context.Context, q calendar.BlockedSlotsQuery) ([]domain.BlockedSlot, error) {
	if f.listBlockedSlotsFn == nil {
		panic("ListBlockedSlots not configured")
	}
	return f.listBlockedSlotsFn(ctx, q)
}

type fakeSchedules struct {
	getFn    func(ctx context.Context, staffID string) ([]domain.StaffSchedule, error)
	upsertFn func(ctx context.Context, in schedules.UpsertInput) (domain.StaffSchedule, error)
}

func (f *fakeSchedules) GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error) {
	if f.getFn == nil {
		panic("GetSchedules not configured")
	}
	return f.getFn(ctx, staffID)
}

func (f *fakeSchedules) UpsertSchedule(ctx context.Context, in schedules.UpsertInput) (domain.StaffSchedule, error) {
	if f.upsertFn == nil {
		panic("UpsertSchedule not configured")
	}
	return f.upsertFn(ctx, in)
}

type fakeAppointments struct {
	bookFn     func(ctx context.Context, in appointments.BookInput) (domain.Appointment, error)
	cancelFn   func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	completeFn func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
}

func (f *fakeAppointments) Book(ctx context.Context, in appointments.BookInput) (domain.Appointment, error) {
	if f.bookFn == nil {
		panic("Book not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeAppointments) Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, id)
}

func (f *fakeAppointments) Complete(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.completeFn == nil {
		panic("Complete not configured")
	}
	return f.completeFn(ctx, id)
}

func newTestMux(cal *fakeCalendar, sched *fakeSchedules, appts *fakeAppointments, checks ...ReadyCheck) http.Handler {
	if cal == nil {
		cal = &fakeCalendar{}
	}
	if sched == nil {
		sched = &fakeSchedules{}
	}
	if appts == nil {
		appts = &fakeAppointments{}
	}
	log := slog.New(slog.DiscardHandler)
	return NewMux(NewHandler(cal, sched, appts, log), checks...)
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestListSlots_PassesQueryAndReturnsTimes(t *testing.T) {
	h := newTestMux(&fakeCalendar{
		availableSlotsFn: func(ctx context.Context, q calendar.SlotsQuery) ([]domain.TimeOfDay, error) {
			if q.StaffID != "a" || q.Date != "2026-10-19" || q.Location != "main" {
				t.Fatalf("unexpected query %+v", q)
			}
			return []domain.TimeOfDay{domain.NewTimeOfDay(9, 0), domain.NewTimeOfDay(9, 30)}, nil
		},
	}, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/slots?staff_id=a&date=2026-10-19&location=main", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[struct {
		Slots []string `json:"slots"`
	}](t, rec)
	if strings.Join(got.Slots, ",") != "09:00,09:30" {
		t.Fatalf("slots = %v", got.Slots)
	}
}

func TestListSlots_EmptyDayReturnsEmptyList(t *testing.T) {
	h := newTestMux(&fakeCalendar{
		availableSlotsFn: func(ctx context.Context, q calendar.SlotsQuery) ([]domain.TimeOfDay, error) {
			return []domain.TimeOfDay{}, nil
		},
	}, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/slots?staff_id=a&date=2026-10-18&location=main", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"slots":[]`) {
		t.Fatalf("body = %s, want empty slots array", rec.Body.String())
	}
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: store.ErrNotFound, want: http.StatusNotFound},
		{name: "integrity", err: &domain.DataIntegrityError{StaffID: "a", Weekday: domain.Friday, Field: "start_time", Value: "9am"}, want: http.StatusInternalServerError},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "storage", err: errors.New("too many connections"), want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestMux(&fakeCalendar{
				gridFn: func(ctx context.Context, q calendar.GridQuery) (availability.Grid, error) {
					return availability.Grid{}, tt.err
				},
			}, nil, nil)
			rec := do(t, h, http.MethodGet, "/api/v1/grid?location=main&date=2026-10-19", "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			body := decodeBody[errorBody](t, rec)
			if body.Error == "" {
				t.Fatalf("missing error message")
			}
		})
	}
}

func TestAvailability_ValidationIs400(t *testing.T) {
	svc := calendar.NewService(calendar.Deps{}, calendar.Config{})
	h := newTestMux(&fakeCalendar{isAvailableFn: svc.IsAvailable}, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/availability?staff_id=a&date=tomorrow&time=10:00&location=main", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Error != "invalid date" {
		t.Fatalf("error = %q, want %q", got.Error, "invalid date")
	}
}

func TestGrid_RendersRows(t *testing.T) {
	date := domain.Date{Year: 2026, Month: time.October, Day: 19}
	h := newTestMux(&fakeCalendar{
		gridFn: func(ctx context.Context, q calendar.GridQuery) (availability.Grid, error) {
			return availability.Grid{
				Location: "main",
				Date:     date,
				Staff:    []domain.Staff{{ID: "a", Name: "Adam"}, {ID: "b", Name: "Bara"}},
				Times:    []domain.TimeOfDay{domain.NewTimeOfDay(9, 0)},
				Cells:    [][]availability.CellState{{availability.CellBooked, availability.CellAvailable}},
			}, nil
		},
	}, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/grid?location=main&date=2026-10-19", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	type row struct {
		Time      string   `json:"time"`
		Cells     []string `json:"cells"`
		Available bool     `json:"available"`
	}
	got := decodeBody[struct {
		Date string `json:"date"`
		Rows []row  `json:"rows"`
	}](t, rec)
	if got.Date != "2026-10-19" || len(got.Rows) != 1 {
		t.Fatalf("grid = %+v", got)
	}
	if r := got.Rows[0]; r.Time != "09:00" || !r.Available || strings.Join(r.Cells, ",") != "booked,available" {
		t.Fatalf("row = %+v", r)
	}
}

func TestToggleBlock_DecodesBody(t *testing.T) {
	h := newTestMux(&fakeCalendar{
		toggleBlockFn: func(ctx context.Context, in calendar.ToggleInput) (domain.BlockState, error) {
			if in.StaffID != "a" || in.Date != "2026-10-19" || in.Time != "14:00" {
				t.Fatalf("unexpected input %+v", in)
			}
			return domain.BlockStateUnblocked, nil
		},
	}, nil, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/blocks/toggle", `{"staff_id":"a","date":"2026-10-19","time":"14:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[struct {
		State string `json:"state"`
	}](t, rec); got.State != "unblocked" {
		t.Fatalf("state = %q", got.State)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/blocks/toggle", `{"staff_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/blocks/toggle", `{"staff":"a"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", rec.Code)
	}
}

func TestBook_CreatedAndConflicts(t *testing.T) {
	var keys []string
	var next error
	h := newTestMux(nil, nil, &fakeAppointments{
		bookFn: func(ctx context.Context, in appointments.BookInput) (domain.Appointment, error) {
			keys = append(keys, in.IdempotencyKey)
			if next != nil {
				return domain.Appointment{}, next
			}
			return domain.Appointment{
				ID:           uuid.New(),
				StaffID:      in.StaffID,
				Location:     "main",
				Date:         domain.Date{Year: 2026, Month: time.October, Day: 19},
				Time:         domain.NewTimeOfDay(10, 0),
				Status:       domain.AppointmentStatusConfirmed,
				CustomerName: in.CustomerName,
			}, nil
		},
	})
	body := `{"staff_id":"a","date":"2026-10-19","time":"10:00","location":"main","customer_name":"Jan"}`

	rec := do(t, h, http.MethodPost, "/api/v1/bookings", body, "Idempotency-Key", " k-1 ")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if keys[0] != "k-1" {
		t.Fatalf("idempotency key = %q, want k-1", keys[0])
	}

	next = store.ErrConflict
	rec = do(t, h, http.MethodPost, "/api/v1/bookings", body, "X-Idempotency-Key", "k-2")
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflict status = %d, want 409", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Code != "conflict" || !strings.Contains(got.Error, "just taken") {
		t.Fatalf("conflict body = %+v", got)
	}
	if keys[1] != "k-2" {
		t.Fatalf("fallback header key = %q, want k-2", keys[1])
	}

	next = &appointments.UnavailableError{Reason: availability.ReasonTooSoon}
	rec = do(t, h, http.MethodPost, "/api/v1/bookings", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unavailable status = %d, want 409", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec); got.Code != "slot_unavailable" {
		t.Fatalf("unavailable body = %+v", got)
	}
}

func TestCancel_RoutesByPathID(t *testing.T) {
	id := uuid.New()
	h := newTestMux(nil, nil, &fakeAppointments{
		cancelFn: func(ctx context.Context, got uuid.UUID) (domain.Appointment, error) {
			if got != id {
				t.Fatalf("id = %s, want %s", got, id)
			}
			return domain.Appointment{ID: id, Status: domain.AppointmentStatusCancelled}, nil
		},
	})

	rec := do(t, h, http.MethodPost, "/api/v1/bookings/"+id.String()+"/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/api/v1/bookings/not-a-uuid/cancel", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestUpsertSchedule_UsesPathValues(t *testing.T) {
	h := newTestMux(nil, &fakeSchedules{
		upsertFn: func(ctx context.Context, in schedules.UpsertInput) (domain.StaffSchedule, error) {
			if in.StaffID != "a" || in.DayOfWeek != "monday" || in.StartTime != "09:00" {
				t.Fatalf("unexpected input %+v", in)
			}
			return domain.StaffSchedule{StaffID: "a", DayOfWeek: domain.Monday, IsWorking: true, StartTime: "09:00", EndTime: "17:00"}, nil
		},
	}, nil)

	rec := do(t, h, http.MethodPut, "/api/v1/staff/a/schedules/monday", `{"is_working":true,"start_time":"09:00","end_time":"17:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestReadyz_ReportsFailingChecks(t *testing.T) {
	h := newTestMux(nil, nil, nil,
		ReadyCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		ReadyCheck{Name: "kafka", Check: func(context.Context) error { return errors.New("no brokers") }},
	)

	rec := do(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := rec.Body.String(); body != "kafka: no brokers" {
		t.Fatalf("body = %q", body)
	}

	rec = do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

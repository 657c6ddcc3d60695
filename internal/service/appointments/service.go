package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"barbershop/backend/internal/availability"
	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/events"
	"barbershop/backend/internal/service/calendar"
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

// UnavailableError rejects a booking whose slot failed the availability
// check before any write was attempted.
type UnavailableError struct {
	Reason availability.Reason
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("slot unavailable: %s", e.Reason)
}

// Checker resolves and evaluates slots. *calendar.Service implements it.
type Checker interface {
	ResolveSlot(q calendar.SlotQuery) (calendar.Slot, error)
	Check(ctx context.Context, slot calendar.Slot) (availability.Verdict, error)
	Today() domain.Date
}

type Service struct {
	repo    store.AppointmentRepository
	checker Checker
	events  events.Publisher
	logger  *slog.Logger
}

func NewService(repo store.AppointmentRepository, checker Checker, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		checker: checker,
		events:  pub,
		logger:  logger.With("component", "appointments"),
	}
}

type BookInput struct {
	StaffID        string
	Date           string
	Time           string
	Location       string
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  string
	Notes          string
	IdempotencyKey string
}

// Book reserves a slot. The availability check is only a hint; the
// repository's uniqueness guard decides races and reports store.ErrConflict.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	slot, err := s.checker.ResolveSlot(calendar.SlotQuery{
		StaffID:  in.StaffID,
		Date:     in.Date,
		Time:     in.Time,
		Location: in.Location,
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	if slot.Date.Before(s.checker.Today()) {
		return domain.Appointment{}, validationError("date is in the past")
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return domain.Appointment{}, validationError("customer_name is required")
	}
	if len(name) > 200 {
		return domain.Appointment{}, validationError("customer_name too long")
	}
	phone := strings.TrimSpace(in.CustomerPhone)
	if len(phone) > 32 {
		return domain.Appointment{}, validationError("customer_phone too long")
	}
	email := strings.TrimSpace(in.CustomerEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.Appointment{}, validationError("invalid customer_email")
		}
	}
	if len(in.Notes) > 2000 {
		return domain.Appointment{}, validationError("notes too long")
	}

	appt := domain.Appointment{
		StaffID:       slot.StaffID,
		Location:      slot.Location,
		Date:          slot.Date,
		Time:          slot.Time,
		Status:        domain.AppointmentStatusConfirmed,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: email,
		Notes:         in.Notes,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Appointment{}, validationError("idempotency_key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("barbershop:book:"+key))

		// A replay must not be rejected by its own earlier booking.
		if _, err := s.repo.Get(ctx, appt.ID); err == nil {
			return s.repo.Create(ctx, appt)
		}
	}

	verdict, err := s.checker.Check(ctx, slot)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !verdict.Available {
		return domain.Appointment{}, &UnavailableError{Reason: verdict.Reason}
	}

	out, err := s.repo.Create(ctx, appt)
	if err != nil {
		return domain.Appointment{}, err
	}

	s.logger.InfoContext(ctx, "appointment booked",
		"appointment_id", out.ID.String(),
		"staff_id", out.StaffID,
		"date", out.Date.String(),
		"time", out.Time.String(),
		"location", string(out.Location),
	)
	s.publish(ctx, events.TypeAppointmentBooked, out)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	return s.repo.Get(ctx, id)
}

// Cancel frees the slot. Cancelling twice is a no-op; cancelling a
// completed appointment is store.ErrConflict.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusCancelled, events.TypeAppointmentCancelled)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusCompleted, events.TypeAppointmentCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to domain.AppointmentStatus, eventType string) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	from := []domain.AppointmentStatus{domain.AppointmentStatusConfirmed}
	out, err := s.repo.SetStatus(ctx, id, from, to)
	if err != nil {
		return domain.Appointment{}, err
	}
	s.logger.InfoContext(ctx, "appointment status changed", "appointment_id", id.String(), "status", string(to))
	s.publish(ctx, eventType, out)
	return out, nil
}

type appointmentEvent struct {
	ID       uuid.UUID                `json:"id"`
	StaffID  string                   `json:"staff_id"`
	Location domain.Location          `json:"location"`
	Date     domain.Date              `json:"date"`
	Time     domain.TimeOfDay         `json:"time"`
	Status   domain.AppointmentStatus `json:"status"`
}

func (s *Service) publish(ctx context.Context, eventType string, a domain.Appointment) {
	ev := events.New(eventType, a.StaffID, appointmentEvent{
		ID:       a.ID,
		StaffID:  a.StaffID,
		Location: a.Location,
		Date:     a.Date,
		Time:     a.Time,
		Status:   a.Status,
	})
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "type", eventType, "appointment_id", a.ID.String(), "err", err)
	}
}

// Package apierr sorts service errors into the outcome classes both
// transports report.
package apierr

import (
	"context"
	"errors"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/service/appointments"
	"barbershop/backend/internal/service/calendar"
	"barbershop/backend/internal/service/schedules"
	"barbershop/backend/internal/store"
)

type Kind int

const (
	// Unavailable covers storage and dependency failures.
	Unavailable Kind = iota
	Invalid
	NotFound
	Conflict
	IdempotencyConflict
	SlotUnavailable
	DataIntegrity
	Timeout
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case IdempotencyConflict:
		return "idempotency_conflict"
	case SlotUnavailable:
		return "slot_unavailable"
	case DataIntegrity:
		return "data_integrity"
	case Timeout:
		return "timeout"
	case Canceled:
		return "canceled"
	default:
		return "unavailable"
	}
}

// Classify reports the kind of err and a message safe to show callers.
// Only validation and unavailability details are passed through.
func Classify(err error) (Kind, string) {
	var (
		calErr   *calendar.ValidationError
		apptErr  *appointments.ValidationError
		schedErr *schedules.ValidationError
		unavail  *appointments.UnavailableError
		dataErr  *domain.DataIntegrityError
	)
	switch {
	case errors.As(err, &calErr):
		return Invalid, calErr.Error()
	case errors.As(err, &apptErr):
		return Invalid, apptErr.Error()
	case errors.As(err, &schedErr):
		return Invalid, schedErr.Error()
	case errors.As(err, &unavail):
		return SlotUnavailable, unavail.Error()
	case errors.Is(err, store.ErrNotFound):
		return NotFound, "not found"
	case errors.Is(err, store.ErrIdempotencyConflict):
		return IdempotencyConflict, "This request key was already used for a different booking. Try again."
	case errors.Is(err, store.ErrConflict):
		return Conflict, "conflict"
	case errors.As(err, &dataErr):
		return DataIntegrity, "stored schedule is invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout, "request timed out"
	case errors.Is(err, context.Canceled):
		return Canceled, "request canceled"
	default:
		return Unavailable, "service unavailable"
	}
}

package apierr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"barbershop/backend/internal/availability"
	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/service/appointments"
	"barbershop/backend/internal/service/calendar"
	"barbershop/backend/internal/service/schedules"
	"barbershop/backend/internal/store"
)

func TestClassify(t *testing.T) {
	calSvc := calendar.NewService(calendar.Deps{}, calendar.Config{})
	_, calErr := calSvc.ResolveSlot(calendar.SlotQuery{})
	if calErr == nil {
		t.Fatalf("expected calendar validation error")
	}
	schedSvc := schedules.NewService(nil, nil, nil)
	_, schedErr := schedSvc.GetSchedules(context.Background(), " ")
	if schedErr == nil {
		t.Fatalf("expected schedules validation error")
	}

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "calendar validation", err: calErr, want: Invalid},
		{name: "schedules validation", err: schedErr, want: Invalid},
		{name: "unavailable slot", err: &appointments.UnavailableError{Reason: availability.ReasonBooked}, want: SlotUnavailable},
		{name: "not found", err: fmt.Errorf("get: %w", store.ErrNotFound), want: NotFound},
		{name: "conflict", err: store.ErrConflict, want: Conflict},
		{name: "idempotency", err: store.ErrIdempotencyConflict, want: IdempotencyConflict},
		{name: "data integrity", err: &domain.DataIntegrityError{StaffID: "a", Weekday: domain.Monday, Field: "start_time", Value: "x"}, want: DataIntegrity},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: Timeout},
		{name: "canceled", err: context.Canceled, want: Canceled},
		{name: "other", err: errors.New("connection refused"), want: Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := Classify(tt.err)
			if got != tt.want {
				t.Fatalf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
			if msg == "" {
				t.Fatalf("empty message for %s", got)
			}
		})
	}
}

func TestClassify_HidesInternalDetails(t *testing.T) {
	_, msg := Classify(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	if msg != "service unavailable" {
		t.Fatalf("message = %q, want generic", msg)
	}
}

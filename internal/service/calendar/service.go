// Package calendar answers availability questions and manages manual
// slot blocks. It loads inputs from the repositories and defers every
// decision to the availability package.
package calendar

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"barbershop/backend/internal/availability"
	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/events"
	"barbershop/backend/internal/store"
)

const (
	DefaultBlockReason = "Blocked by admin"
	maxBlockRange      = 366 * 24 * time.Hour
	gridConcurrency    = 8
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

type Config struct {
	// TimeZone decides what "today" means for the booking cutoff.
	TimeZone    *time.Location
	Cutoff      time.Duration
	Locations   []domain.Location
	BlockReason string
}

type Deps struct {
	Schedules    store.ScheduleRepository
	Appointments store.AppointmentRepository
	Blocks       store.BlockedSlotRepository
	Staff        store.StaffRepository
	Events       events.Publisher
	Logger       *slog.Logger
}

type Service struct {
	schedules    store.ScheduleRepository
	appointments store.AppointmentRepository
	blocks       store.BlockedSlotRepository
	staff        store.StaffRepository
	events       events.Publisher
	logger       *slog.Logger

	cutoff      availability.Cutoff
	locations   []domain.Location
	blockReason string
	now         func() time.Time
}

func NewService(deps Deps, cfg Config) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pub := deps.Events
	if pub == nil {
		pub = events.Nop{}
	}
	tz := cfg.TimeZone
	if tz == nil {
		tz = time.Local
	}
	margin := cfg.Cutoff
	if margin < 0 {
		margin = availability.DefaultCutoff
	}
	reason := strings.TrimSpace(cfg.BlockReason)
	if reason == "" {
		reason = DefaultBlockReason
	}
	return &Service{
		schedules:    deps.Schedules,
		appointments: deps.Appointments,
		blocks:       deps.Blocks,
		staff:        deps.Staff,
		events:       pub,
		logger:       logger.With("component", "calendar"),
		cutoff:       availability.Cutoff{Location: tz, Margin: margin},
		locations:    cfg.Locations,
		blockReason:  reason,
		now:          time.Now,
	}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the current date in the configured time zone.
func (s *Service) Today() domain.Date {
	return s.cutoff.Today(s.now())
}

// SlotQuery identifies one slot. Fields are raw caller input.
type SlotQuery struct {
	StaffID  string
	Date     string
	Time     string
	Location string
}

// Slot is a validated SlotQuery.
type Slot struct {
	StaffID  string
	Date     domain.Date
	Time     domain.TimeOfDay
	Location domain.Location
}

// ResolveSlot validates caller input. Malformed values fail fast with a
// *ValidationError.
func (s *Service) ResolveSlot(q SlotQuery) (Slot, error) {
	staffID, err := s.parseStaffID(q.StaffID)
	if err != nil {
		return Slot{}, err
	}
	date, err := parseDate("date", q.Date)
	if err != nil {
		return Slot{}, err
	}
	at, err := parseSlotTime(q.Time)
	if err != nil {
		return Slot{}, err
	}
	loc, err := s.ParseLocation(q.Location)
	if err != nil {
		return Slot{}, err
	}
	return Slot{StaffID: staffID, Date: date, Time: at, Location: loc}, nil
}

func (s *Service) IsAvailable(ctx context.Context, q SlotQuery) (availability.Verdict, error) {
	slot, err := s.ResolveSlot(q)
	if err != nil {
		return availability.Verdict{}, err
	}
	return s.Check(ctx, slot)
}

// Check evaluates a resolved slot, reading only as much as it needs.
func (s *Service) Check(ctx context.Context, slot Slot) (availability.Verdict, error) {
	now := s.now()
	if s.cutoff.TooSoon(slot.Date, slot.Time, now) {
		return availability.Verdict{Reason: availability.ReasonTooSoon}, nil
	}

	slots, err := s.slotsFor(ctx, slot.StaffID, slot.Date)
	if err != nil {
		return availability.Verdict{}, err
	}
	day := availability.Day{StaffID: slot.StaffID, Date: slot.Date, Location: slot.Location, Slots: slots}
	if v := day.Evaluate(slot.Time, now, s.cutoff); !v.Available {
		return v, nil
	}

	booked, err := s.appointments.IsOccupied(ctx, slot.StaffID, slot.Date, slot.Time, slot.Location)
	if err != nil {
		return availability.Verdict{}, err
	}
	if booked {
		return availability.Verdict{Reason: availability.ReasonBooked}, nil
	}

	blocked, err := s.blocks.IsBlocked(ctx, slot.StaffID, slot.Date, slot.Time)
	if err != nil {
		return availability.Verdict{}, err
	}
	if blocked {
		return availability.Verdict{Reason: availability.ReasonBlocked}, nil
	}
	return availability.Verdict{Available: true, Reason: availability.ReasonAvailable}, nil
}

type SlotsQuery struct {
	StaffID  string
	Date     string
	Location string
}

// AvailableSlots lists the bookable slots for one staff member. An empty
// result is a normal answer; load failures are returned as errors.
func (s *Service) AvailableSlots(ctx context.Context, q SlotsQuery) ([]domain.TimeOfDay, error) {
	staffID, err := s.parseStaffID(q.StaffID)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("date", q.Date)
	if err != nil {
		return nil, err
	}
	loc, err := s.ParseLocation(q.Location)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotsFor(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return []domain.TimeOfDay{}, nil
	}

	day, err := s.loadDay(ctx, staffID, date, loc, slots)
	if err != nil {
		return nil, err
	}
	return day.Available(s.now(), s.cutoff), nil
}

type GridQuery struct {
	Location string
	Date     string
}

// Grid builds the admin calendar for one location and date over active
// staff only. Inputs are loaded concurrently; any failure fails the grid.
func (s *Service) Grid(ctx context.Context, q GridQuery) (availability.Grid, error) {
	loc, err := s.ParseLocation(q.Location)
	if err != nil {
		return availability.Grid{}, err
	}
	date, err := parseDate("date", q.Date)
	if err != nil {
		return availability.Grid{}, err
	}

	listed, err := s.staff.ListActive(ctx, loc)
	if err != nil {
		return availability.Grid{}, err
	}
	// Inactive staff are never rendered, not even as not working.
	staff := make([]domain.Staff, 0, len(listed))
	for _, st := range listed {
		if st.Active {
			staff = append(staff, st)
		}
	}

	slots := make([][]domain.TimeOfDay, len(staff))
	var appts []domain.Appointment
	var blocks []domain.BlockedSlot

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gridConcurrency)
	g.Go(func() error {
		var err error
		appts, err = s.appointments.List(gctx, store.AppointmentFilter{
			Location: loc,
			From:     date,
			To:       date,
			Statuses: domain.OccupyingStatuses,
		})
		return err
	})
	g.Go(func() error {
		var err error
		blocks, err = s.blocks.List(gctx, store.BlockedSlotFilter{From: date, To: date})
		return err
	})
	for i, st := range staff {
		g.Go(func() error {
			var err error
			slots[i], err = s.slotsFor(gctx, st.ID, date)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return availability.Grid{}, err
	}

	apptsByStaff := make(map[string][]domain.Appointment)
	for _, a := range appts {
		apptsByStaff[a.StaffID] = append(apptsByStaff[a.StaffID], a)
	}
	blocksByStaff := make(map[string][]domain.BlockedSlot)
	for _, b := range blocks {
		blocksByStaff[b.StaffID] = append(blocksByStaff[b.StaffID], b)
	}

	days := make([]availability.Day, len(staff))
	for i, st := range staff {
		days[i] = availability.Day{
			StaffID:  st.ID,
			Date:     date,
			Location: loc,
			Slots:    slots[i],
			Booked:   availability.BookedTimes(apptsByStaff[st.ID], loc),
			Blocked:  availability.BlockedTimes(blocksByStaff[st.ID]),
		}
	}
	return availability.BuildGrid(loc, date, staff, days, s.now(), s.cutoff), nil
}

type ToggleInput struct {
	StaffID string
	Date    string
	Time    string
	Reason  string
}

// ToggleBlock flips the manual block on one slot and returns the new
// state. Applying it twice restores the original state.
func (s *Service) ToggleBlock(ctx context.Context, in ToggleInput) (domain.BlockState, error) {
	staffID, err := s.parseStaffID(in.StaffID)
	if err != nil {
		return "", err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return "", err
	}
	at, err := parseSlotTime(in.Time)
	if err != nil {
		return "", err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = s.blockReason
	}
	if len(reason) > 500 {
		return "", validationError("reason too long")
	}

	if _, err := s.staff.Get(ctx, staffID); err != nil {
		return "", err
	}

	state, err := s.blocks.Toggle(ctx, staffID, date, at, reason)
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "slot block toggled",
		"staff_id", staffID,
		"date", date.String(),
		"time", at.String(),
		"state", string(state),
	)
	s.publish(ctx, events.New(events.TypeBlockToggled, staffID, blockToggled{
		StaffID: staffID,
		Date:    date,
		Time:    at,
		State:   state,
		Reason:  reason,
	}))
	return state, nil
}

type blockToggled struct {
	StaffID string            `json:"staff_id"`
	Date    domain.Date       `json:"date"`
	Time    domain.TimeOfDay  `json:"time"`
	State   domain.BlockState `json:"state"`
	Reason  string            `json:"reason"`
}

type BlockedSlotsQuery struct {
	StaffID string
	From    string
	To      string
}

// ListBlockedSlots lists blocks in an inclusive date range. Both bounds are
// optional but a bounded range may not exceed a year.
func (s *Service) ListBlockedSlots(ctx context.Context, q BlockedSlotsQuery) ([]domain.BlockedSlot, error) {
	var filter store.BlockedSlotFilter
	filter.StaffID = strings.TrimSpace(q.StaffID)

	var err error
	if strings.TrimSpace(q.From) != "" {
		if filter.From, err = parseDate("from", q.From); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(q.To) != "" {
		if filter.To, err = parseDate("to", q.To); err != nil {
			return nil, err
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		if filter.To.Before(filter.From) {
			return nil, validationError("to must not be before from")
		}
		span := filter.To.At(0, time.UTC).Sub(filter.From.At(0, time.UTC))
		if span > maxBlockRange {
			return nil, validationError("range too long")
		}
	}

	return s.blocks.List(ctx, filter)
}

// ParseLocation validates a location against the configured set.
func (s *Service) ParseLocation(raw string) (domain.Location, error) {
	if strings.TrimSpace(raw) == "" {
		return "", validationError("location is required")
	}
	if len(s.locations) == 0 {
		return domain.Location(strings.ToLower(strings.TrimSpace(raw))), nil
	}
	loc, ok := domain.ParseLocation(raw, s.locations)
	if !ok {
		return "", validationError("unknown location")
	}
	return loc, nil
}

func (s *Service) slotsFor(ctx context.Context, staffID string, date domain.Date) ([]domain.TimeOfDay, error) {
	schedules, err := s.schedules.GetSchedules(ctx, staffID)
	if err != nil {
		return nil, err
	}
	slots, err := availability.SlotsForDate(schedules, date)
	if err != nil {
		s.logger.ErrorContext(ctx, "invalid stored schedule", "staff_id", staffID, "err", err)
		return nil, err
	}
	return slots, nil
}

func (s *Service) loadDay(ctx context.Context, staffID string, date domain.Date, loc domain.Location, slots []domain.TimeOfDay) (availability.Day, error) {
	appts, err := s.appointments.List(ctx, store.AppointmentFilter{
		StaffID:  staffID,
		Location: loc,
		From:     date,
		To:       date,
		Statuses: domain.OccupyingStatuses,
	})
	if err != nil {
		return availability.Day{}, err
	}
	blocks, err := s.blocks.List(ctx, store.BlockedSlotFilter{StaffID: staffID, From: date, To: date})
	if err != nil {
		return availability.Day{}, err
	}
	return availability.Day{
		StaffID:  staffID,
		Date:     date,
		Location: loc,
		Slots:    slots,
		Booked:   availability.BookedTimes(appts, loc),
		Blocked:  availability.BlockedTimes(blocks),
	}, nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "type", ev.Type, "key", ev.Key, "err", err)
	}
}

func (s *Service) parseStaffID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", validationError("staff_id is required")
	}
	if len(id) > 64 {
		return "", validationError("staff_id too long")
	}
	return id, nil
}

func parseDate(field, raw string) (domain.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Date{}, validationError(field + " is required")
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, validationError("invalid " + field)
	}
	return d, nil
}

func parseSlotTime(raw string) (domain.TimeOfDay, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, validationError("time is required")
	}
	t, err := domain.ParseTimeOfDay(raw)
	if err != nil {
		return 0, validationError("invalid time")
	}
	return t, nil
}

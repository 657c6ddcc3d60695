// Package cache provides read-through caches in front of the postgres
// repositories.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/store"
)

const (
	DefaultScheduleSize = 256
	DefaultScheduleTTL  = 5 * time.Minute
)

// Schedules caches weekly schedules per staff member. Writes made through
// it invalidate the staff member's entry; writes made elsewhere are picked
// up when the entry expires.
type Schedules struct {
	next   store.ScheduleRepository
	lru    *expirable.LRU[string, []domain.StaffSchedule]
	logger *slog.Logger

	// versions counts invalidations per staff id. A miss only fills the
	// cache if no invalidation happened while it was loading.
	mu       sync.Mutex
	versions map[string]uint64
}

func NewSchedules(next store.ScheduleRepository, size int, ttl time.Duration, logger *slog.Logger) *Schedules {
	if size <= 0 {
		size = DefaultScheduleSize
	}
	if ttl <= 0 {
		ttl = DefaultScheduleTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Schedules{
		next:     next,
		lru:      expirable.NewLRU[string, []domain.StaffSchedule](size, nil, ttl),
		logger:   logger.With("component", "schedule_cache"),
		versions: map[string]uint64{},
	}
}

func (c *Schedules) GetSchedules(ctx context.Context, staffID string) ([]domain.StaffSchedule, error) {
	if rows, ok := c.lru.Get(staffID); ok {
		c.logger.DebugContext(ctx, "cache hit", "staff_id", staffID)
		return clone(rows), nil
	}

	c.mu.Lock()
	version := c.versions[staffID]
	c.mu.Unlock()

	rows, err := c.next.GetSchedules(ctx, staffID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	stored := c.versions[staffID] == version
	if stored {
		c.lru.Add(staffID, clone(rows))
	}
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "cache miss", "staff_id", staffID, "rows", len(rows), "stored", stored)
	return rows, nil
}

func (c *Schedules) UpsertSchedule(ctx context.Context, schedule domain.StaffSchedule) (domain.StaffSchedule, error) {
	out, err := c.next.UpsertSchedule(ctx, schedule)
	// Invalidate even on error: the write may have landed.
	c.Invalidate(schedule.StaffID)
	if err != nil {
		return domain.StaffSchedule{}, err
	}
	return out, nil
}

func (c *Schedules) Invalidate(staffID string) {
	c.mu.Lock()
	c.versions[staffID]++
	c.lru.Remove(staffID)
	c.mu.Unlock()
}

func clone(rows []domain.StaffSchedule) []domain.StaffSchedule {
	if rows == nil {
		return nil
	}
	out := make([]domain.StaffSchedule, len(rows))
	copy(out, rows)
	return out
}

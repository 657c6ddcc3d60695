package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/store"
)

type BlockedSlotRepo struct {
	db *bun.DB
}

func NewBlockedSlotRepo(db *bun.DB) *BlockedSlotRepo {
	return &BlockedSlotRepo{db: db}
}

func (r *BlockedSlotRepo) IsBlocked(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.BlockedSlot)(nil)).
		Where("staff_id = ?", staffID).
		Where("date = ?", date).
		Where(slotTimeMatches, at.String()).
		Exists(ctx)
}

func (r *BlockedSlotRepo) List(ctx context.Context, filter store.BlockedSlotFilter) ([]domain.BlockedSlot, error) {
	var rows []domain.BlockedSlot
	q := r.db.NewSelect().Model(&rows)
	if filter.StaffID != "" {
		q = q.Where("staff_id = ?", filter.StaffID)
	}
	if !filter.From.IsZero() {
		q = q.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("date <= ?", filter.To)
	}
	if err := q.OrderExpr("date ASC, slot_time ASC, staff_id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// Toggle runs delete-if-present, else insert-if-absent, under an advisory
// lock on the slot key. A unique violation from a writer outside the lock
// means the block already exists, which is the state we wanted.
func (r *BlockedSlotRepo) Toggle(ctx context.Context, staffID string, date domain.Date, at domain.TimeOfDay, reason string) (domain.BlockState, error) {
	var state domain.BlockState
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockKey(ctx, tx, "block:"+slotLockKey(staffID, date, at)); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*domain.BlockedSlot)(nil)).
			Where("staff_id = ?", staffID).
			Where("date = ?", date).
			Where(slotTimeMatches, at.String()).
			Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if deleted > 0 {
			state = domain.BlockStateUnblocked
			return nil
		}

		m := domain.BlockedSlot{StaffID: staffID, Date: date, Time: at, Reason: reason}
		_, err = tx.NewInsert().
			Model(&m).
			On("CONFLICT (staff_id, date, slot_time) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
		state = domain.BlockStateBlocked
		return nil
	})
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.BlockStateBlocked, nil
		}
		return "", err
	}
	return state, nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BlockState string

const (
	BlockStateBlocked   BlockState = "blocked"
	BlockStateUnblocked BlockState = "unblocked"
)

// BlockedSlot removes one otherwise bookable slot. At most one exists per
// (staff, date, time).
type BlockedSlot struct {
	bun.BaseModel `bun:"table:blocked_slots"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	StaffID   string    `bun:"staff_id,notnull"`
	Date      Date      `bun:"date,type:date,notnull"`
	Time      TimeOfDay `bun:"slot_time,type:time,notnull"`
	Reason    string    `bun:"reason,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (b *BlockedSlot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}

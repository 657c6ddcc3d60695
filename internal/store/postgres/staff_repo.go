package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"barbershop/backend/internal/domain"
	"barbershop/backend/internal/store"
)

type StaffRepo struct {
	db *bun.DB
}

func NewStaffRepo(db *bun.DB) *StaffRepo {
	return &StaffRepo{db: db}
}

// ListActive returns active staff at location ordered by name. Inactive
// staff never appear.
func (r *StaffRepo) ListActive(ctx context.Context, location domain.Location) ([]domain.Staff, error) {
	var rows []domain.Staff
	err := r.db.NewSelect().
		Model(&rows).
		Where("location = ?", location).
		Where("active").
		OrderExpr("name ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StaffRepo) Get(ctx context.Context, staffID string) (domain.Staff, error) {
	var out domain.Staff
	err := r.db.NewSelect().Model(&out).Where("id = ?", staffID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Staff{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Staff{}, err
	}
	return out, nil
}

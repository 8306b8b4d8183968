package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sikampus-api/internal/models"
)

// SummaryRepository runs the aggregation queries behind the staff summary.
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository constructs the repository.
func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// CountRegistered counts Registered registrations across all modules.
func (r *SummaryRepository) CountRegistered(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.RegistrationStatusRegistered); err != nil {
		return 0, fmt.Errorf("count registered: %w", err)
	}
	return count, nil
}

// SumOpenCapacity sums max_slots over Open modules.
func (r *SummaryRepository) SumOpenCapacity(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(SUM(max_slots), 0) FROM modules WHERE status = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.ModuleStatusOpen); err != nil {
		return 0, fmt.Errorf("sum open capacity: %w", err)
	}
	return total, nil
}

// CountOccupiedOpen counts Registered registrations whose module is Open.
func (r *SummaryRepository) CountOccupiedOpen(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(p.id) FROM registrations p
        JOIN modules m ON m.id = p.module_id
        WHERE p.status = $1 AND m.status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.RegistrationStatusRegistered, models.ModuleStatusOpen); err != nil {
		return 0, fmt.Errorf("count occupied open capacity: %w", err)
	}
	return count, nil
}

// SumFeesSince sums total_fee of Registered registrations made at or after since.
func (r *SummaryRepository) SumFeesSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COALESCE(SUM(total_fee), 0) FROM registrations WHERE status = $1 AND reg_date >= $2`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, models.RegistrationStatusRegistered, since); err != nil {
		return 0, fmt.Errorf("sum period fees: %w", err)
	}
	return total, nil
}

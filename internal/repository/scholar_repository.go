package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sikampus-api/internal/models"
)

// ScholarRepository handles persistence of scholars.
type ScholarRepository struct {
	db *sqlx.DB
}

// NewScholarRepository constructs the repository.
func NewScholarRepository(db *sqlx.DB) *ScholarRepository {
	return &ScholarRepository{db: db}
}

// FindByCode returns a scholar by external scholar code.
func (r *ScholarRepository) FindByCode(ctx context.Context, code string) (*models.Scholar, error) {
	const query = `SELECT id, scholar_code, name, contact_email, program, created_at FROM scholars WHERE scholar_code = $1`
	var scholar models.Scholar
	if err := r.db.GetContext(ctx, &scholar, query, code); err != nil {
		return nil, err
	}
	return &scholar, nil
}

// CreateIfAbsent inserts the scholar unless the code is already taken. It
// returns ErrDuplicateKey when another writer owns the code.
func (r *ScholarRepository) CreateIfAbsent(ctx context.Context, scholar *models.Scholar) error {
	if scholar.ID == "" {
		scholar.ID = uuid.NewString()
	}
	if scholar.CreatedAt.IsZero() {
		scholar.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO scholars (id, scholar_code, name, contact_email, program, created_at)
        VALUES (:id, :scholar_code, :name, :contact_email, :program, :created_at)
        ON CONFLICT (scholar_code) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, scholar)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create scholar: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create scholar rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDuplicateKey
	}
	return nil
}

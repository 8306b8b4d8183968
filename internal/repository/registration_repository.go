package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sikampus-api/internal/models"
)

const registrationDetailSelect = `SELECT p.id, p.module_id, p.scholar_id, p.reg_date, p.total_fee, p.status, p.final_score,
        s.scholar_code, s.name AS scholar_name, m.code AS module_code, m.title AS module_title
        FROM registrations p
        JOIN scholars s ON s.id = p.scholar_id
        JOIN modules m ON m.id = p.module_id`

// RegistrationScope is the view of a locked module handed to WithModuleLock
// callbacks. Every call runs inside the transaction holding the lock.
type RegistrationScope interface {
	Module() models.Module
	CountRegistered(ctx context.Context) (int, error)
	ExistsActive(ctx context.Context, scholarID string) (bool, error)
	Insert(ctx context.Context, registration *models.Registration) error
}

// RegistrationRepository handles persistence of registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// List returns registrations newest first with the total matching count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.ModuleID != "" {
		conditions = append(conditions, fmt.Sprintf("p.module_id = $%d", len(args)+1))
		args = append(args, filter.ModuleID)
	}
	if filter.ScholarID != "" {
		conditions = append(conditions, fmt.Sprintf("p.scholar_id = $%d", len(args)+1))
		args = append(args, filter.ScholarID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY p.reg_date DESC LIMIT %d OFFSET %d", registrationDetailSelect, clause, size, offset)
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM registrations p" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// ListAll returns every registration newest first, for exports.
func (r *RegistrationRepository) ListAll(ctx context.Context) ([]models.RegistrationDetail, error) {
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, registrationDetailSelect+" ORDER BY p.reg_date DESC"); err != nil {
		return nil, fmt.Errorf("list all registrations: %w", err)
	}
	return registrations, nil
}

// FindByID returns a registration by its ID.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	const query = `SELECT id, module_id, scholar_id, reg_date, total_fee, status, final_score FROM registrations WHERE id = $1`
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindDetailByID returns a registration with scholar and module info.
func (r *RegistrationRepository) FindDetailByID(ctx context.Context, id string) (*models.RegistrationDetail, error) {
	var detail models.RegistrationDetail
	if err := r.db.GetContext(ctx, &detail, registrationDetailSelect+" WHERE p.id = $1", id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateStatus moves a registration from one status to another. The update only
// applies while the stored status still equals from; it reports whether a row changed.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, from, to models.RegistrationStatus, score *models.FinalScore) (bool, error) {
	const query = `UPDATE registrations SET status = $3, final_score = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, score)
	if err != nil {
		return false, fmt.Errorf("update registration status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update registration rows affected: %w", err)
	}
	return affected == 1, nil
}

// WithModuleLock runs fn in a transaction holding a row lock on the module, so
// callers for the same module are serialised by the database. A missing module
// surfaces as sql.ErrNoRows. The transaction commits only when fn returns nil.
func (r *RegistrationRepository) WithModuleLock(ctx context.Context, moduleID string, fn func(context.Context, RegistrationScope) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT id, code, title, credits, max_slots, status, created_at, updated_at
        FROM modules WHERE id = $1 FOR UPDATE`
	var module models.Module
	if err = tx.GetContext(ctx, &module, lockQuery, moduleID); err != nil {
		return err
	}

	if err = fn(ctx, &lockedModule{tx: tx, module: module}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit registration tx: %w", err)
	}
	return nil
}

type lockedModule struct {
	tx     *sqlx.Tx
	module models.Module
}

func (l *lockedModule) Module() models.Module {
	return l.module
}

func (l *lockedModule) CountRegistered(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE module_id = $1 AND status = $2`
	var count int
	if err := l.tx.GetContext(ctx, &count, query, l.module.ID, models.RegistrationStatusRegistered); err != nil {
		return 0, fmt.Errorf("count registered: %w", err)
	}
	return count, nil
}

func (l *lockedModule) ExistsActive(ctx context.Context, scholarID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE module_id = $1 AND scholar_id = $2 AND status <> $3`
	var count int
	if err := l.tx.GetContext(ctx, &count, query, l.module.ID, scholarID, models.RegistrationStatusCanceled); err != nil {
		return false, fmt.Errorf("check active registration: %w", err)
	}
	return count > 0, nil
}

func (l *lockedModule) Insert(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.RegDate.IsZero() {
		registration.RegDate = time.Now().UTC()
	}
	registration.ModuleID = l.module.ID
	const query = `INSERT INTO registrations (id, module_id, scholar_id, reg_date, total_fee, status, final_score)
        VALUES (:id, :module_id, :scholar_id, :reg_date, :total_fee, :status, :final_score)`
	if _, err := l.tx.NamedExecContext(ctx, query, registration); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

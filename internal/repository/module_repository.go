package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sikampus-api/internal/models"
)

const moduleColumns = `m.id, m.code, m.title, m.credits, m.max_slots, m.status, m.created_at, m.updated_at`

// ModuleRepository handles persistence of project modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs the repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

func moduleConditions(filter models.ModuleFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(m.code) LIKE $%d OR LOWER(m.title) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns every module matching the filter ordered by code.
func (r *ModuleRepository) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	clause, args := moduleConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM modules m%s ORDER BY m.code ASC", moduleColumns, clause)
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// ListWithOccupancy returns modules with their Registered head count, ordered by title.
func (r *ModuleRepository) ListWithOccupancy(ctx context.Context, filter models.ModuleFilter) ([]models.ModuleOccupancy, error) {
	clause, args := moduleConditions(filter)
	query := fmt.Sprintf(`SELECT %s, COUNT(p.id) AS occupied
        FROM modules m
        LEFT JOIN registrations p ON p.module_id = m.id AND p.status = '%s'%s
        GROUP BY m.id
        ORDER BY m.title ASC`, moduleColumns, models.RegistrationStatusRegistered, clause)
	var modules []models.ModuleOccupancy
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, fmt.Errorf("list module occupancy: %w", err)
	}
	return modules, nil
}

// FindOccupancyByID returns a module with its Registered head count.
func (r *ModuleRepository) FindOccupancyByID(ctx context.Context, id string) (*models.ModuleOccupancy, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(p.id) AS occupied
        FROM modules m
        LEFT JOIN registrations p ON p.module_id = m.id AND p.status = '%s'
        WHERE m.id = $1
        GROUP BY m.id`, moduleColumns, models.RegistrationStatusRegistered)
	var module models.ModuleOccupancy
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// ExistsByCode checks uniqueness of a module code.
func (r *ModuleRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM modules WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check module code: %w", err)
	}
	return true, nil
}

// Create persists a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now
	}
	module.UpdatedAt = now

	const query = `INSERT INTO modules (id, code, title, credits, max_slots, status, created_at, updated_at)
        VALUES (:id, :code, :title, :credits, :max_slots, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update modifies a module.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	module.UpdatedAt = time.Now().UTC()
	const query = `UPDATE modules SET code = :code, title = :title, credits = :credits, max_slots = :max_slots,
        status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// DeleteCascade removes a module and every registration referencing it in one
// transaction. It returns sql.ErrNoRows when the module does not exist.
func (r *ModuleRepository) DeleteCascade(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete module tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE module_id = $1`, id); err != nil {
		return fmt.Errorf("delete module registrations: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete module rows affected: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete module tx: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/repository"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

const moduleCachePattern = "modules:*"

type moduleRepository interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
	ListWithOccupancy(ctx context.Context, filter models.ModuleFilter) ([]models.ModuleOccupancy, error)
	FindOccupancyByID(ctx context.Context, id string) (*models.ModuleOccupancy, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	DeleteCascade(ctx context.Context, id string) error
}

type moduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// CreateModuleRequest describes a new module.
type CreateModuleRequest struct {
	Code     string              `json:"code" validate:"required,max=32"`
	Title    string              `json:"title" validate:"required,max=200"`
	Credits  int                 `json:"credits" validate:"required,min=1,max=10"`
	MaxSlots int                 `json:"max_slots" validate:"required,min=1,max=100"`
	Status   models.ModuleStatus `json:"status" validate:"required,oneof=Open Closed"`
}

// UpdateModuleRequest carries a partial module update; nil fields are left unchanged.
type UpdateModuleRequest struct {
	Code     *string              `json:"code" validate:"omitempty,max=32"`
	Title    *string              `json:"title" validate:"omitempty,max=200"`
	Credits  *int                 `json:"credits" validate:"omitempty,min=1,max=10"`
	MaxSlots *int                 `json:"max_slots" validate:"omitempty,min=1,max=100"`
	Status   *models.ModuleStatus `json:"status" validate:"omitempty,oneof=Open Closed"`
}

// ModuleService manages the module catalogue.
type ModuleService struct {
	repo      moduleRepository
	cache     moduleCache
	fees      *FeeCalculator
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewModuleService constructs ModuleService. cache may be nil.
func NewModuleService(repo moduleRepository, cache moduleCache, fees *FeeCalculator, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if fees == nil {
		fees = NewFeeCalculator(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{repo: repo, cache: cache, fees: fees, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// ListOpenWithAvailability returns Open modules that still have a free slot, ordered by title.
func (s *ModuleService) ListOpenWithAvailability(ctx context.Context) ([]models.ModuleAvailability, error) {
	modules, err := s.repo.ListWithOccupancy(ctx, models.ModuleFilter{Status: models.ModuleStatusOpen})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open modules")
	}
	result := make([]models.ModuleAvailability, 0, len(modules))
	for _, m := range modules {
		availability := s.availability(m)
		if !Eligible(availability) {
			continue
		}
		result = append(result, availability)
	}
	return result, nil
}

// List returns the module catalogue ordered by code. The second return value
// reports whether the result came from cache.
func (s *ModuleService) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, bool, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown module status filter")
	}
	key := moduleCacheKey(filter)
	if s.cache != nil {
		var cached []models.Module
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	modules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	if modules == nil {
		modules = []models.Module{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, modules, s.cacheTTL)
	}
	return modules, false, nil
}

// Get returns one module with its capacity view.
func (s *ModuleService) Get(ctx context.Context, id string) (*models.ModuleAvailability, error) {
	module, err := s.repo.FindOccupancyByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrModuleNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	availability := s.availability(*module)
	return &availability, nil
}

// Create adds a module to the catalogue.
func (s *ModuleService) Create(ctx context.Context, req CreateModuleRequest) (*models.Module, error) {
	req.Code = normalizeModuleCode(req.Code)
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate module code")
	}
	if exists {
		return nil, duplicateCode(req.Code)
	}

	module := &models.Module{
		Code:     req.Code,
		Title:    req.Title,
		Credits:  req.Credits,
		MaxSlots: req.MaxSlots,
		Status:   req.Status,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, duplicateCode(req.Code)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	s.invalidate(ctx)
	s.logger.Info("module created", zap.String("module_id", module.ID), zap.String("code", module.Code))
	return module, nil
}

// Update applies a partial update to a module.
func (s *ModuleService) Update(ctx context.Context, id string, req UpdateModuleRequest) (*models.Module, error) {
	if req.Code != nil {
		code := normalizeModuleCode(*req.Code)
		if code == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "module code cannot be empty")
		}
		req.Code = &code
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "module title cannot be empty")
		}
		req.Title = &title
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	current, err := s.repo.FindOccupancyByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrModuleNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	module := current.Module

	if req.Code != nil && !strings.EqualFold(*req.Code, module.Code) {
		exists, err := s.repo.ExistsByCode(ctx, *req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate module code")
		}
		if exists {
			return nil, duplicateCode(*req.Code)
		}
	}
	if req.Code != nil {
		module.Code = *req.Code
	}
	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Credits != nil {
		module.Credits = *req.Credits
	}
	if req.MaxSlots != nil {
		module.MaxSlots = *req.MaxSlots
	}
	if req.Status != nil {
		module.Status = *req.Status
	}

	if err := s.repo.Update(ctx, &module); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, duplicateCode(module.Code)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}
	if module.MaxSlots < current.Occupied {
		s.logger.Warn("module capacity reduced below occupancy",
			zap.String("module_id", id),
			zap.Int("max_slots", module.MaxSlots),
			zap.Int("occupied", current.Occupied),
		)
	}
	s.invalidate(ctx)
	return &module, nil
}

// Delete removes a module together with all of its registrations.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrModuleNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	s.invalidate(ctx)
	s.logger.Info("module deleted", zap.String("module_id", id))
	return nil
}

func (s *ModuleService) availability(m models.ModuleOccupancy) models.ModuleAvailability {
	availability := EvaluateCapacity(m.Module, m.Occupied)
	availability.Fee = s.fees.Fee(m.Credits)
	return availability
}

func (s *ModuleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, moduleCachePattern)
}

func moduleCacheKey(filter models.ModuleFilter) string {
	if filter.Status == "" && filter.Search == "" {
		return "modules:all"
	}
	return fmt.Sprintf("modules:status=%s:q=%s", filter.Status, strings.ToLower(strings.TrimSpace(filter.Search)))
}

func normalizeModuleCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func duplicateCode(code string) error {
	return appErrors.Clone(appErrors.ErrDuplicateCode, fmt.Sprintf("module code %s already exists", code))
}

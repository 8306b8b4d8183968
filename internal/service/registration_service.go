package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/repository"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type registrationRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindDetailByID(ctx context.Context, id string) (*models.RegistrationDetail, error)
	UpdateStatus(ctx context.Context, id string, from, to models.RegistrationStatus, score *models.FinalScore) (bool, error)
	WithModuleLock(ctx context.Context, moduleID string, fn func(context.Context, repository.RegistrationScope) error) error
}

type scholarResolver interface {
	Resolve(ctx context.Context, req ResolveScholarRequest) (*models.Scholar, error)
}

var allowedTransitions = map[models.RegistrationStatus][]models.RegistrationStatus{
	models.RegistrationStatusRegistered: {models.RegistrationStatusInProgress, models.RegistrationStatusCanceled},
	models.RegistrationStatusInProgress: {models.RegistrationStatusCompleted, models.RegistrationStatusCanceled},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to models.RegistrationStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RegisterScholarRequest is the public registration form.
type RegisterScholarRequest struct {
	ModuleID     string `json:"module_id" validate:"required"`
	ScholarCode  string `json:"scholar_code" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=150"`
	ContactEmail string `json:"contact_email" validate:"required,email,max=255"`
	Program      string `json:"program" validate:"required,max=150"`
}

// TransitionRegistrationRequest moves a registration to a new status. FinalScore
// is required for Completed and ignored otherwise.
type TransitionRegistrationRequest struct {
	Status     models.RegistrationStatus `json:"status" validate:"required,oneof=Registered InProgress Completed Canceled"`
	FinalScore *models.FinalScore        `json:"final_score"`
}

// RegistrationService runs the registration state machine.
type RegistrationService struct {
	repo      registrationRepository
	scholars  scholarResolver
	fees      *FeeCalculator
	locks     *keyedMutex
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(repo registrationRepository, scholars scholarResolver, fees *FeeCalculator, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *RegistrationService {
	if fees == nil {
		fees = NewFeeCalculator(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		repo:      repo,
		scholars:  scholars,
		fees:      fees,
		locks:     newKeyedMutex(),
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RegisterScholar resolves the scholar identity then registers it in the module.
func (s *RegistrationService) RegisterScholar(ctx context.Context, req RegisterScholarRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordRegistration(appErrors.ErrValidation.Code)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	scholar, err := s.scholars.Resolve(ctx, ResolveScholarRequest{
		ScholarCode:  req.ScholarCode,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Program:      req.Program,
	})
	if err != nil {
		s.metrics.RecordRegistration(outcomeOf(err))
		return nil, err
	}
	return s.Register(ctx, req.ModuleID, scholar.ID)
}

// Register creates a Registered registration for the scholar. Capacity,
// duplicate and insert run under one per-module lock so at most max_slots
// Registered registrations can exist.
func (s *RegistrationService) Register(ctx context.Context, moduleID, scholarID string) (*models.Registration, error) {
	waitStart := time.Now()
	unlock := s.locks.Lock(moduleID)
	defer unlock()
	s.metrics.ObserveLockWait(time.Since(waitStart))

	var created *models.Registration
	err := s.repo.WithModuleLock(ctx, moduleID, func(ctx context.Context, scope repository.RegistrationScope) error {
		module := scope.Module()
		occupied, err := scope.CountRegistered(ctx)
		if err != nil {
			return err
		}
		if err := CheckEligibility(EvaluateCapacity(module, occupied)); err != nil {
			return err
		}

		active, err := scope.ExistsActive(ctx, scholarID)
		if err != nil {
			return err
		}
		if active {
			return appErrors.Clone(appErrors.ErrAlreadyRegistered, fmt.Sprintf("scholar already registered in module %s", module.Code))
		}

		registration := &models.Registration{
			ScholarID: scholarID,
			RegDate:   s.now(),
			TotalFee:  s.fees.Fee(module.Credits),
			Status:    models.RegistrationStatusRegistered,
		}
		if err := scope.Insert(ctx, registration); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return appErrors.Clone(appErrors.ErrAlreadyRegistered, fmt.Sprintf("scholar already registered in module %s", module.Code))
			}
			return err
		}
		created = registration
		return nil
	})
	if err != nil {
		err = s.registrationError(err)
		s.metrics.RecordRegistration(outcomeOf(err))
		s.logger.Debug("registration rejected", zap.String("module_id", moduleID), zap.String("scholar_id", scholarID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordRegistration(OutcomeRegistered)
	s.logger.Info("registration created",
		zap.String("registration_id", created.ID),
		zap.String("module_id", moduleID),
		zap.String("scholar_id", scholarID),
		zap.Int64("total_fee", created.TotalFee),
	)
	return created, nil
}

func (s *RegistrationService) registrationError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrModuleNotFound, "module not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register scholar")
}

// Transition moves a registration along the lifecycle. The stored status is
// compared on write, so a concurrent change turns into INVALID_TRANSITION.
func (s *RegistrationService) Transition(ctx context.Context, id string, req TransitionRegistrationRequest) (*models.RegistrationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrRegistrationNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	if !CanTransition(current.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move registration from %s to %s", current.Status, req.Status))
	}

	var score *models.FinalScore
	if req.Status == models.RegistrationStatusCompleted {
		if req.FinalScore == nil || !req.FinalScore.Valid() {
			return nil, appErrors.Clone(appErrors.ErrMissingScore, "completed registrations require a final score of A, B, C, D or E")
		}
		value := *req.FinalScore
		score = &value
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, req.Status, score)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration status")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "registration status changed concurrently")
	}
	s.metrics.RecordTransition(current.Status, req.Status)
	s.logger.Info("registration transitioned",
		zap.String("registration_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(req.Status)),
	)

	return s.Get(ctx, id)
}

// Get returns a registration with scholar and module details.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.RegistrationDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrRegistrationNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return detail, nil
}

// List returns registrations newest first with pagination metadata.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown registration status filter")
	}
	registrations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return registrations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func outcomeOf(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return OutcomeFailed
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/repository"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type scholarRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Scholar, error)
	CreateIfAbsent(ctx context.Context, scholar *models.Scholar) error
}

// ResolveScholarRequest carries the identity fields supplied on registration.
type ResolveScholarRequest struct {
	ScholarCode  string `json:"scholar_code" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=150"`
	ContactEmail string `json:"contact_email" validate:"required,email,max=255"`
	Program      string `json:"program" validate:"required,max=150"`
}

// ScholarService maps external scholar codes onto scholar records.
type ScholarService struct {
	repo      scholarRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	retries   int
}

// NewScholarService constructs ScholarService. retries bounds how often a lost
// insert race is re-queried.
func NewScholarService(repo scholarRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, retries int) *ScholarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if retries <= 0 {
		retries = 3
	}
	return &ScholarService{repo: repo, validator: validate, logger: logger, metrics: metrics, retries: retries}
}

// Resolve returns the scholar owning the code, creating it on first sight.
// Stored details of an existing scholar are never updated.
func (s *ScholarService) Resolve(ctx context.Context, req ResolveScholarRequest) (*models.Scholar, error) {
	req.ScholarCode = strings.TrimSpace(req.ScholarCode)
	req.Name = strings.TrimSpace(req.Name)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	req.Program = strings.TrimSpace(req.Program)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scholar payload")
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		scholar, err := s.repo.FindByCode(ctx, req.ScholarCode)
		if err == nil {
			return scholar, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholar")
		}

		candidate := &models.Scholar{
			ScholarCode:  req.ScholarCode,
			Name:         req.Name,
			ContactEmail: req.ContactEmail,
			Program:      req.Program,
		}
		err = s.repo.CreateIfAbsent(ctx, candidate)
		if err == nil {
			s.logger.Info("scholar created", zap.String("scholar_id", candidate.ID), zap.String("scholar_code", candidate.ScholarCode))
			return candidate, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scholar")
		}
		s.metrics.RecordScholarRetry()
		s.logger.Debug("scholar insert lost race, re-querying", zap.String("scholar_code", req.ScholarCode), zap.Int("attempt", attempt))
	}

	return nil, appErrors.Wrap(
		fmt.Errorf("scholar %s unresolved after %d attempts", req.ScholarCode, s.retries),
		appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scholar",
	)
}

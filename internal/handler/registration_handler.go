package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/dto"
	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/service"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
	"github.com/noah-isme/sikampus-api/pkg/response"
)

type registrationService interface {
	RegisterScholar(ctx context.Context, req service.RegisterScholarRequest) (*models.Registration, error)
	Transition(ctx context.Context, id string, req service.TransitionRegistrationRequest) (*models.RegistrationDetail, error)
	Get(ctx context.Context, id string) (*models.RegistrationDetail, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationDetail, *models.Pagination, error)
}

type moduleReader interface {
	Get(ctx context.Context, id string) (*models.ModuleAvailability, error)
}

type registrationExporter interface {
	ExportRegistrations(ctx context.Context, format string) (*service.ExportResult, error)
}

// RegistrationHandler exposes registration endpoints.
type RegistrationHandler struct {
	service  registrationService
	modules  moduleReader
	exporter registrationExporter
	logger   *zap.Logger
}

// NewRegistrationHandler builds a new handler.
func NewRegistrationHandler(svc registrationService, modules moduleReader, exporter registrationExporter, logger *zap.Logger) *RegistrationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationHandler{service: svc, modules: modules, exporter: exporter, logger: logger}
}

// Register godoc
// @Summary Register a scholar in a module
// @Description Resolves the scholar by code, creating it on first use, then registers it
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegisterScholarRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req service.RegisterScholarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	registration, err := h.service.RegisterScholar(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt := dto.RegistrationReceipt{Registration: *registration}
	module, err := h.modules.Get(c.Request.Context(), registration.ModuleID)
	if err != nil {
		h.logger.Warn("registration receipt without module details", zap.String("registration_id", registration.ID), zap.Error(err))
	} else {
		receipt.ModuleCode = module.Module.Code
		receipt.ModuleTitle = module.Module.Title
		receipt.Occupied = module.Occupied
		receipt.Available = module.Available
	}
	response.Created(c, receipt)
}

// List godoc
// @Summary List registrations
// @Description Newest first
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param moduleId query string false "Module ID"
// @Param scholarId query string false "Scholar ID"
// @Param status query string false "Registration status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	filter := models.RegistrationFilter{
		ModuleID:  c.Query("moduleId"),
		ScholarID: c.Query("scholarId"),
		Status:    models.RegistrationStatus(c.Query("status")),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get registration
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Transition godoc
// @Summary Change registration status
// @Description Completed requires final_score A-E; scores sent with other statuses are dropped
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param payload body service.TransitionRegistrationRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/{id}/status [patch]
func (h *RegistrationHandler) Transition(c *gin.Context) {
	var req service.TransitionRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}
	detail, err := h.service.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Export godoc
// @Summary Export registrations
// @Tags Registrations
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	result, err := h.exporter.ExportRegistrations(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

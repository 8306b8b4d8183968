package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sikampus-api/internal/middleware"
	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/service"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
	"github.com/noah-isme/sikampus-api/pkg/response"
)

type moduleService interface {
	ListOpenWithAvailability(ctx context.Context) ([]models.ModuleAvailability, error)
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, bool, error)
	Get(ctx context.Context, id string) (*models.ModuleAvailability, error)
	Create(ctx context.Context, req service.CreateModuleRequest) (*models.Module, error)
	Update(ctx context.Context, id string, req service.UpdateModuleRequest) (*models.Module, error)
	Delete(ctx context.Context, id string) error
}

// ModuleHandler exposes the module catalogue.
type ModuleHandler struct {
	service moduleService
}

// NewModuleHandler builds a new handler.
func NewModuleHandler(svc moduleService) *ModuleHandler {
	return &ModuleHandler{service: svc}
}

// ListOpen godoc
// @Summary List modules open for registration
// @Description Open modules with at least one free slot, ordered by title
// @Tags Modules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /modules/open [get]
func (h *ModuleHandler) ListOpen(c *gin.Context) {
	modules, err := h.service.ListOpenWithAvailability(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// List godoc
// @Summary List all modules
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param status query string false "Open or Closed"
// @Param q query string false "Search code or title"
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	filter := models.ModuleFilter{
		Status: models.ModuleStatus(c.Query("status")),
		Search: c.Query("q"),
	}
	modules, hit, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, modules, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get module with availability
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Create godoc
// @Summary Create module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req service.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}
	module, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// Update godoc
// @Summary Update module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param payload body service.UpdateModuleRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /modules/{id} [patch]
func (h *ModuleHandler) Update(c *gin.Context) {
	var req service.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}
	module, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Delete godoc
// @Summary Delete module and its registrations
// @Tags Modules
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

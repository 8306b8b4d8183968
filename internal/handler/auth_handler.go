package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sikampus-api/internal/dto"
	"github.com/noah-isme/sikampus-api/internal/middleware"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
	"github.com/noah-isme/sikampus-api/pkg/response"
)

type sessionService interface {
	SelectRole(req dto.SelectRoleRequest) (*dto.SessionResponse, error)
}

// AuthHandler exposes role selection.
type AuthHandler struct {
	service sessionService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc sessionService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// SelectRole godoc
// @Summary Open a session for a role
// @Description Issues a session token for PUBLIC or STAFF. Roles are selected, not authenticated.
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.SelectRoleRequest true "Role selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /session [post]
func (h *AuthHandler) SelectRole(c *gin.Context) {
	var req dto.SelectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	res, err := h.service.SelectRole(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Current godoc
// @Summary Describe the current session
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [get]
func (h *AuthHandler) Current(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"session_id": claims.SessionID,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt,
	}, nil)
}

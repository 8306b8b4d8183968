package dto

import (
	"time"

	"github.com/noah-isme/sikampus-api/internal/models"
)

// SelectRoleRequest picks the interface a caller wants to use.
type SelectRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=PUBLIC STAFF"`
}

// SessionResponse returns the signed session token.
type SessionResponse struct {
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	ExpiresIn int64       `json:"expires_in"`
	IssuedAt  time.Time   `json:"issued_at"`
}

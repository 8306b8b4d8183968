package models

import "github.com/golang-jwt/jwt/v5"

// Role is the interface a caller selected. Roles are chosen, not authenticated.
type Role string

const (
	RolePublic Role = "PUBLIC"
	RoleStaff  Role = "STAFF"
)

// SessionClaims is the payload of a role-selection token.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

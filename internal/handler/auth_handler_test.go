package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikampus-api/internal/dto"
	"github.com/noah-isme/sikampus-api/internal/middleware"
	"github.com/noah-isme/sikampus-api/internal/models"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type mockSessionService struct {
	req dto.SelectRoleRequest
	err error
}

func (m *mockSessionService) SelectRole(req dto.SelectRoleRequest) (*dto.SessionResponse, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SessionResponse{Token: "signed", Role: req.Role, ExpiresIn: 3600}, nil
}

func TestAuthHandlerSelectRole(t *testing.T) {
	svc := &mockSessionService{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/api/v1/session", []byte(`{"role":"STAFF"}`))
	h.SelectRole(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleStaff, svc.req.Role)
	var res dto.SessionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	assert.Equal(t, "signed", res.Token)
}

func TestAuthHandlerSelectRoleValidation(t *testing.T) {
	svc := &mockSessionService{err: appErrors.Clone(appErrors.ErrValidation, "role must be PUBLIC or STAFF")}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/api/v1/session", []byte(`{"role":"ADMIN"}`))
	h.SelectRole(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerCurrent(t *testing.T) {
	h := NewAuthHandler(&mockSessionService{})

	c, w := newTestContext(http.MethodGet, "/api/v1/session", nil)
	c.Set(middleware.ContextSessionKey, &models.SessionClaims{
		SessionID: "sess-1",
		Role:      models.RolePublic,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	h.Current(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &body))
	assert.Equal(t, "sess-1", body["session_id"])
	assert.Equal(t, "PUBLIC", body["role"])
}

func TestAuthHandlerCurrentWithoutSession(t *testing.T) {
	h := NewAuthHandler(&mockSessionService{})

	c, w := newTestContext(http.MethodGet, "/api/v1/session", nil)
	h.Current(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

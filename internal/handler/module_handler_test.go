package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikampus-api/internal/middleware"
	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/service"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
)

type mockModuleService struct {
	open      []models.ModuleAvailability
	modules   []models.Module
	cacheHit  bool
	module    *models.ModuleAvailability
	created   *models.Module
	err       error
	filter    models.ModuleFilter
	createReq service.CreateModuleRequest
	updateID  string
	updateReq service.UpdateModuleRequest
	deletedID string
}

func (m *mockModuleService) ListOpenWithAvailability(ctx context.Context) ([]models.ModuleAvailability, error) {
	return m.open, m.err
}

func (m *mockModuleService) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, bool, error) {
	m.filter = filter
	return m.modules, m.cacheHit, m.err
}

func (m *mockModuleService) Get(ctx context.Context, id string) (*models.ModuleAvailability, error) {
	return m.module, m.err
}

func (m *mockModuleService) Create(ctx context.Context, req service.CreateModuleRequest) (*models.Module, error) {
	m.createReq = req
	return m.created, m.err
}

func (m *mockModuleService) Update(ctx context.Context, id string, req service.UpdateModuleRequest) (*models.Module, error) {
	m.updateID = id
	m.updateReq = req
	return m.created, m.err
}

func (m *mockModuleService) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

type testEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func TestModuleHandlerListOpen(t *testing.T) {
	svc := &mockModuleService{open: []models.ModuleAvailability{
		{Module: models.Module{ID: "m1", Code: "PRJ101", Title: "Capstone"}, Occupied: 1, Available: 2, Fee: 600000},
	}}
	h := NewModuleHandler(svc)

	c, w := newTestContext(http.MethodGet, "/api/v1/modules/open", nil)
	h.ListOpen(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var items []models.ModuleAvailability
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "PRJ101", items[0].Module.Code)
	assert.Equal(t, 2, items[0].Available)
	assert.Equal(t, int64(600000), items[0].Fee)
}

func TestModuleHandlerListReportsCacheMeta(t *testing.T) {
	svc := &mockModuleService{modules: []models.Module{{ID: "m1", Code: "PRJ101"}}, cacheHit: true}
	h := NewModuleHandler(svc)

	c, w := newTestContext(http.MethodGet, "/api/v1/modules?status=Open&q=cap", nil)
	middleware.WithResponseMeta()(c)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ModuleStatusOpen, svc.filter.Status)
	assert.Equal(t, "cap", svc.filter.Search)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestModuleHandlerCreate(t *testing.T) {
	svc := &mockModuleService{created: &models.Module{ID: "m9", Code: "PRJ909"}}
	h := NewModuleHandler(svc)

	body := []byte(`{"code":"prj909","title":"Robotics","credits":2,"max_slots":5,"status":"Open"}`)
	c, w := newTestContext(http.MethodPost, "/api/v1/modules", body)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "prj909", svc.createReq.Code)
	assert.Equal(t, 5, svc.createReq.MaxSlots)
}

func TestModuleHandlerCreateRejectsMalformedJSON(t *testing.T) {
	h := NewModuleHandler(&mockModuleService{})

	c, w := newTestContext(http.MethodPost, "/api/v1/modules", []byte(`{"code":`))
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestModuleHandlerCreateDuplicateCode(t *testing.T) {
	svc := &mockModuleService{err: appErrors.Clone(appErrors.ErrDuplicateCode, "module code PRJ101 already exists")}
	h := NewModuleHandler(svc)

	body := []byte(`{"code":"PRJ101","title":"Again","credits":1,"max_slots":1,"status":"Open"}`)
	c, w := newTestContext(http.MethodPost, "/api/v1/modules", body)
	h.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_CODE", decodeEnvelope(t, w).Error.Code)
}

func TestModuleHandlerUpdate(t *testing.T) {
	svc := &mockModuleService{created: &models.Module{ID: "m1", Status: models.ModuleStatusClosed}}
	h := NewModuleHandler(svc)

	c, w := newTestContext(http.MethodPatch, "/api/v1/modules/m1", []byte(`{"status":"Closed"}`))
	c.Params = gin.Params{{Key: "id", Value: "m1"}}
	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m1", svc.updateID)
	require.NotNil(t, svc.updateReq.Status)
	assert.Equal(t, models.ModuleStatusClosed, *svc.updateReq.Status)
	assert.Nil(t, svc.updateReq.MaxSlots)
}

func TestModuleHandlerGetNotFound(t *testing.T) {
	svc := &mockModuleService{err: appErrors.Clone(appErrors.ErrModuleNotFound, "module not found")}
	h := NewModuleHandler(svc)

	c, w := newTestContext(http.MethodGet, "/api/v1/modules/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MODULE_NOT_FOUND", decodeEnvelope(t, w).Error.Code)
}

func TestModuleHandlerDelete(t *testing.T) {
	svc := &mockModuleService{}
	h := NewModuleHandler(svc)

	c, w := newTestContext(http.MethodDelete, "/api/v1/modules/m1", nil)
	c.Params = gin.Params{{Key: "id", Value: "m1"}}
	h.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "m1", svc.deletedID)
}

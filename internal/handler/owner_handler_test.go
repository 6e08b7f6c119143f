package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escolinha-api/internal/dto"
	"github.com/noah-isme/escolinha-api/internal/middleware"
	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/service"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/storage"
)

type fakeRosterSrv struct {
	students   []models.Student
	groups     []dto.CategoryGroup
	hit        bool
	result     *service.StudentResult
	err        error
	lastID     string
	lastUpdate dto.UpdateStudentRequest
	lastPhoto  *service.PhotoUpload
}

func (f *fakeRosterSrv) ListAll(context.Context) ([]models.Student, bool, error) {
	return f.students, f.hit, f.err
}

func (f *fakeRosterSrv) ListByCategory(context.Context) ([]dto.CategoryGroup, bool, error) {
	return f.groups, f.hit, f.err
}

func (f *fakeRosterSrv) Update(_ context.Context, id string, req dto.UpdateStudentRequest, photo *service.PhotoUpload) (*service.StudentResult, error) {
	f.lastID, f.lastUpdate, f.lastPhoto = id, req, photo
	return f.result, f.err
}

func (f *fakeRosterSrv) Delete(_ context.Context, id string) (*service.StudentResult, error) {
	f.lastID = id
	return f.result, f.err
}

type fakeExporter struct {
	format string
	file   *service.ExportFile
	err    error
}

func (f *fakeExporter) ExportRoster(_ context.Context, format string) (*service.ExportFile, error) {
	f.format = format
	return f.file, f.err
}

func newOwnerHandler(t *testing.T, roster *fakeRosterSrv, exporter rosterExporter) *OwnerHandler {
	t.Helper()
	spool, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewOwnerHandler(roster, exporter, spool, PhotoPolicy{MaxBytes: 4096, AllowedMIMEs: []string{"image/jpeg", "image/png"}})
}

func ownerRouter(h *OwnerHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	group := router.Group("/api/donos")
	group.GET("/alunos", h.List)
	group.GET("/categorias", h.Categories)
	group.GET("/alunos/export", h.Export)
	group.PUT("/alunos/:id", h.Update)
	group.DELETE("/alunos/:id", h.Delete)
	return router
}

func TestOwnerListReportsCacheHit(t *testing.T) {
	roster := &fakeRosterSrv{students: []models.Student{{ID: "a"}, {ID: "b"}}, hit: true}
	router := ownerRouter(newOwnerHandler(t, roster, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donos/alunos", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope listEnvelope
	decode(t, rec, &envelope)
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(2), envelope.Meta["total"])
}

func TestOwnerCategoriesShape(t *testing.T) {
	roster := &fakeRosterSrv{groups: []dto.CategoryGroup{
		{ID: models.CategoryFeminina, Name: "Feminina", Students: []dto.DashboardStudent{{ID: "x", Name: "Bia", Paid: true}}},
		{ID: models.CategorySub06, Name: "Sub06", Students: []dto.DashboardStudent{}},
	}}
	router := ownerRouter(newOwnerHandler(t, roster, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donos/categorias", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope listEnvelope
	decode(t, rec, &envelope)
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, "Feminina", envelope.Data[0]["id"])
	students := envelope.Data[0]["students"].([]interface{})
	require.Len(t, students, 1)
	assert.Equal(t, true, students[0].(map[string]interface{})["paid"])
	assert.Equal(t, []interface{}{}, envelope.Data[1]["students"])
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestOwnerUpdateJSONWithWarnings(t *testing.T) {
	roster := &fakeRosterSrv{result: &service.StudentResult{
		Student:  &models.Student{ID: "s1", StatusPagamento: models.PaymentPaid},
		Warnings: []service.Warning{{Code: service.WarningPhotoCleanup, Message: "x"}},
	}}
	router := ownerRouter(newOwnerHandler(t, roster, nil))

	req := httptest.NewRequest(http.MethodPut, "/api/donos/alunos/s1", strings.NewReader(`{"statusPagamento":"Pago"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", roster.lastID)
	assert.Equal(t, "Pago", roster.lastUpdate.StatusPagamento)
	assert.Nil(t, roster.lastPhoto)

	var envelope responseEnvelope
	decode(t, rec, &envelope)
	assert.Equal(t, "Aluno atualizado com sucesso!", envelope.Meta["message"])
	assert.Len(t, envelope.Meta["warnings"], 1)
}

func TestOwnerUpdateMultipartWithPhoto(t *testing.T) {
	roster := &fakeRosterSrv{result: &service.StudentResult{Student: &models.Student{ID: "s1"}}}
	router := ownerRouter(newOwnerHandler(t, roster, nil))

	req := multipartRequest(t, http.MethodPut, "/api/donos/alunos/s1", map[string]string{"genero": "Feminino"}, &formFile{name: "nova.png", content: pngBytes})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Feminino", roster.lastUpdate.Genero)
	require.NotNil(t, roster.lastPhoto)
	assert.Equal(t, "image/png", roster.lastPhoto.ContentType)
}

func TestOwnerDeleteNotFound(t *testing.T) {
	roster := &fakeRosterSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Aluno não encontrado.")}
	router := ownerRouter(newOwnerHandler(t, roster, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/donos/alunos/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", roster.lastID)
}

func TestOwnerDeleteSuccess(t *testing.T) {
	roster := &fakeRosterSrv{result: &service.StudentResult{Student: &models.Student{ID: "s1"}}}
	router := ownerRouter(newOwnerHandler(t, roster, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/donos/alunos/s1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	decode(t, rec, &envelope)
	assert.Equal(t, "Aluno excluído com sucesso!", envelope.Meta["message"])
	assert.NotContains(t, envelope.Meta, "warnings")
}

func TestOwnerExport(t *testing.T) {
	exporter := &fakeExporter{file: &service.ExportFile{Filename: "alunos-20240101.csv", ContentType: "text/csv; charset=utf-8", Content: []byte("Nome\n")}}
	router := ownerRouter(newOwnerHandler(t, &fakeRosterSrv{}, exporter))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donos/alunos/export?format=csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="alunos-20240101.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Nome\n", rec.Body.String())
}

func TestOwnerExportInvalidFormat(t *testing.T) {
	exporter := &fakeExporter{err: appErrors.Clone(appErrors.ErrValidation, "Formato de exportação inválido.")}
	router := ownerRouter(newOwnerHandler(t, &fakeRosterSrv{}, exporter))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donos/alunos/export?format=doc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

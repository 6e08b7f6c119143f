package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escolinha-api/internal/dto"
	"github.com/noah-isme/escolinha-api/internal/middleware"
	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/service"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/response"
)

type rosterService interface {
	ListAll(ctx context.Context) ([]models.Student, bool, error)
	ListByCategory(ctx context.Context) ([]dto.CategoryGroup, bool, error)
	Update(ctx context.Context, id string, req dto.UpdateStudentRequest, photo *service.PhotoUpload) (*service.StudentResult, error)
	Delete(ctx context.Context, id string) (*service.StudentResult, error)
}

type rosterExporter interface {
	ExportRoster(ctx context.Context, format string) (*service.ExportFile, error)
}

// OwnerHandler exposes the owner dashboard endpoints.
type OwnerHandler struct {
	roster   rosterService
	exporter rosterExporter
	spool    photoSpooler
	policy   PhotoPolicy
}

// NewOwnerHandler constructs the handler.
func NewOwnerHandler(roster rosterService, exporter rosterExporter, spool photoSpooler, policy PhotoPolicy) *OwnerHandler {
	return &OwnerHandler{roster: roster, exporter: exporter, spool: spool, policy: policy}
}

// List godoc
// @Summary List every student
// @Tags Donos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /donos/alunos [get]
func (h *OwnerHandler) List(c *gin.Context) {
	students, hit, err := h.roster.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, students, middleware.ExtractMeta(c, map[string]interface{}{
		"total": len(students),
	}))
}

// Categories godoc
// @Summary List students grouped by category
// @Description Always returns Feminina, Sub06, Sub08, Sub10, Sub14 and Fora de Categoria in this order.
// @Tags Donos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /donos/categorias [get]
func (h *OwnerHandler) Categories(c *gin.Context) {
	groups, hit, err := h.roster.ListByCategory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, groups, middleware.ExtractMeta(c, nil))
}

// Update godoc
// @Summary Update a student
// @Description Partial update. Gender or birth date changes reclassify the student; a bare categoria is stored as given.
// @Tags Donos
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param foto formData file false "New photo (JPG or PNG)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donos/alunos/{id} [put]
func (h *OwnerHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req dto.UpdateStudentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload"))
		return
	}

	photo, err := spoolPhoto(c, h.spool, h.policy)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.roster.Update(c.Request.Context(), id, req, photo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Student, middleware.ExtractMeta(c, resultMeta("Aluno atualizado com sucesso!", result.Warnings)))
}

// Delete godoc
// @Summary Delete a student
// @Tags Donos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donos/alunos/{id} [delete]
func (h *OwnerHandler) Delete(c *gin.Context) {
	result, err := h.roster.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Student, middleware.ExtractMeta(c, resultMeta("Aluno excluído com sucesso!", result.Warnings)))
}

// Export godoc
// @Summary Download the roster
// @Tags Donos
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /donos/alunos/export [get]
func (h *OwnerHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export query"))
		return
	}
	file, err := h.exporter.ExportRoster(c.Request.Context(), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func resultMeta(message string, warnings []service.Warning) map[string]interface{} {
	meta := map[string]interface{}{"message": message}
	if len(warnings) > 0 {
		meta["warnings"] = warnings
	}
	return meta
}

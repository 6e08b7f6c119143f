package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escolinha-api/internal/dto"
	"github.com/noah-isme/escolinha-api/internal/middleware"
	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/service"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/response"
)

type registrationService interface {
	Register(ctx context.Context, req dto.RegisterStudentRequest, photo *service.PhotoUpload) (*models.Student, error)
}

// ParentHandler serves the public registration form.
type ParentHandler struct {
	service registrationService
	spool   photoSpooler
	policy  PhotoPolicy
}

// NewParentHandler constructs the handler.
func NewParentHandler(svc registrationService, spool photoSpooler, policy PhotoPolicy) *ParentHandler {
	return &ParentHandler{service: svc, spool: spool, policy: policy}
}

// Register godoc
// @Summary Register a student
// @Description Public sign-up submitted by a parent. The category is derived from gender and birth date.
// @Tags Pais
// @Accept multipart/form-data
// @Produce json
// @Param nomeCompleto formData string true "Student full name"
// @Param dataNascimento formData string true "Birth date (YYYY-MM-DD)"
// @Param genero formData string true "Gender"
// @Param nomeResponsavel formData string true "Guardian name"
// @Param cpfResponsavel formData string true "Guardian CPF"
// @Param nomeMae formData string true "Mother name"
// @Param contato1 formData string true "Primary contact"
// @Param contato2 formData string false "Secondary contact"
// @Param foto formData file false "Photo (JPG or PNG)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /pais/alunos/cadastro [post]
func (h *ParentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Por favor, preencha todos os campos obrigatórios."))
		return
	}

	photo, err := spoolPhoto(c, h.spool, h.policy)
	if err != nil {
		response.Error(c, err)
		return
	}

	student, err := h.service.Register(c.Request.Context(), req, photo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, student, middleware.ExtractMeta(c, map[string]interface{}{
		"message": "Aluno cadastrado com sucesso!",
	}))
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escolinha-api/internal/models"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/response"
)

type accessService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exchanges the owner access code for a token.
type AuthHandler struct {
	service accessService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc accessService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Owner login
// @Description Exchange the shared access code for a one hour owner token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Access code"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMeta(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Código de acesso é obrigatório."), unauthenticated())
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ErrorWithMeta(c, err, unauthenticated())
		return
	}

	response.JSON(c, http.StatusOK, res)
}

func unauthenticated() map[string]interface{} {
	return map[string]interface{}{"authenticated": false}
}

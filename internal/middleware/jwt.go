package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/escolinha-api/internal/models"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
	"github.com/noah-isme/escolinha-api/pkg/response"
)

// ContextOwnerKey is the gin context key storing validated owner claims.
const ContextOwnerKey = "currentOwner"

type tokenValidator interface {
	ValidateToken(token string) (*models.OwnerClaims, error)
}

// JWT protects routes by requiring a valid owner token.
func JWT(validator tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Token de acesso ausente ou malformado."))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextOwnerKey, claims)
		c.Next()
	}
}

// OwnerClaims returns the claims stored by JWT, if any.
func OwnerClaims(c *gin.Context) *models.OwnerClaims {
	value, exists := c.Get(ContextOwnerKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.OwnerClaims)
	return claims
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/escolinha-api/internal/models"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
)

type stubValidator struct {
	claims *models.OwnerClaims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*models.OwnerClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func protectedRouter(v tokenValidator, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/donos", JWT(v), RequireRoles(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, OwnerClaims(c).Role)
	})
	return router
}

func TestJWTAcceptsOwnerToken(t *testing.T) {
	v := &stubValidator{claims: &models.OwnerClaims{Role: models.RoleOwner}}
	router := protectedRouter(v, models.RoleOwner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/donos", nil)
	req.Header.Set("Authorization", "bearer abc.def.ghi")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleOwner, rec.Body.String())
	assert.Equal(t, "abc.def.ghi", v.seen)
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	router := protectedRouter(&stubValidator{}, models.RoleOwner)
	for _, header := range []string{"", "Token abc", "Bearer "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/donos", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestJWTPropagatesValidationError(t *testing.T) {
	v := &stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "Token inválido ou expirado.")}
	router := protectedRouter(v, models.RoleOwner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/donos", nil)
	req.Header.Set("Authorization", "Bearer expired")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token inválido ou expirado.")
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	v := &stubValidator{claims: &models.OwnerClaims{Role: "guest"}}
	router := protectedRouter(v, models.RoleOwner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/donos", nil)
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type recordingObserver struct {
	method, path string
	status       int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.method, r.path, r.status = method, path, status
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.DELETE("/api/donos/alunos/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/donos/alunos/42", nil))

	assert.Equal(t, http.MethodDelete, observer.method)
	assert.Equal(t, "/api/donos/alunos/:id", observer.path)
	assert.Equal(t, http.StatusNoContent, observer.status)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, "unmatched", observer.path)
}

func TestResponseMetaCollectsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c, map[string]interface{}{"message": "ok"})
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Equal(t, "ok", meta["message"])
	assert.Contains(t, meta, processingTimeMS)
}

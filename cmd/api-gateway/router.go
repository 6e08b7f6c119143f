package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/escolinha-api/api/swagger"
	"github.com/noah-isme/escolinha-api/internal/handler"
	"github.com/noah-isme/escolinha-api/internal/middleware"
	"github.com/noah-isme/escolinha-api/internal/models"
	"github.com/noah-isme/escolinha-api/internal/service"
	"github.com/noah-isme/escolinha-api/pkg/config"
	"github.com/noah-isme/escolinha-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/escolinha-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/escolinha-api/pkg/middleware/requestid"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.OwnerClaims, error)
}

type routerDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	tokens  tokenValidator
	parent  *handler.ParentHandler
	owner   *handler.OwnerHandler
	auth    *handler.AuthHandler
	photos  *handler.PhotoHandler
	system  *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	if d.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	if d.metrics != nil {
		r.Use(middleware.Metrics(d.metrics))
	}
	r.Use(middleware.WithResponseMeta())

	r.GET("/", d.system.Root)
	r.GET("/health", d.system.Health)
	r.GET("/ready", d.system.Ready)
	if d.metrics != nil {
		r.GET("/metrics", d.system.Prometheus)
	}
	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/" + strings.Trim(d.cfg.APIPrefix, "/"))
	api.POST("/pais/alunos/cadastro", d.parent.Register)
	api.POST("/login", d.auth.Login)
	if d.photos != nil {
		api.GET("/fotos/:id", d.photos.Show)
	}

	owners := api.Group("/donos", middleware.JWT(d.tokens), middleware.RequireRoles(models.RoleOwner))
	owners.GET("/alunos", d.owner.List)
	owners.GET("/alunos/export", d.owner.Export)
	owners.PUT("/alunos/:id", d.owner.Update)
	owners.DELETE("/alunos/:id", d.owner.Delete)
	owners.GET("/categorias", d.owner.Categories)

	return r
}

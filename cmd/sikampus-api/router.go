package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sikampus-api/internal/handler"
	"github.com/noah-isme/sikampus-api/internal/middleware"
	"github.com/noah-isme/sikampus-api/internal/models"
	"github.com/noah-isme/sikampus-api/internal/service"
	"github.com/noah-isme/sikampus-api/pkg/config"
	"github.com/noah-isme/sikampus-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sikampus-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sikampus-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg            *config.Config
	logger         *zap.Logger
	metrics        *service.MetricsService
	tokens         middleware.TokenValidator
	auth           *handler.AuthHandler
	modules        *handler.ModuleHandler
	registrations  *handler.RegistrationHandler
	summary        *handler.SummaryHandler
	metricsHandler *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.metricsHandler.Health)
	r.GET("/ready", d.metricsHandler.Ready)
	r.GET("/metrics", d.metricsHandler.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.POST("/session", d.auth.SelectRole)
	api.GET("/modules/open", d.modules.ListOpen)
	api.POST("/registrations", d.registrations.Register)

	session := api.Group("")
	session.Use(middleware.JWT(d.tokens))
	session.GET("/session", d.auth.Current)

	staff := api.Group("")
	staff.Use(middleware.JWT(d.tokens), middleware.RequireRoles(models.RoleStaff))

	staff.GET("/modules", d.modules.List)
	staff.GET("/modules/:id", d.modules.Get)
	staff.POST("/modules", middleware.Audit(d.logger, "create", "module"), d.modules.Create)
	staff.PATCH("/modules/:id", middleware.Audit(d.logger, "update", "module"), d.modules.Update)
	staff.DELETE("/modules/:id", middleware.Audit(d.logger, "delete", "module"), d.modules.Delete)

	staff.GET("/registrations", d.registrations.List)
	staff.GET("/registrations/export", middleware.Audit(d.logger, "export", "registration"), d.registrations.Export)
	staff.GET("/registrations/:id", d.registrations.Get)
	staff.PATCH("/registrations/:id/status", middleware.Audit(d.logger, "transition", "registration"), d.registrations.Transition)

	staff.GET("/metrics/summary", d.summary.Summary)

	return r
}

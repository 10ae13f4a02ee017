package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"subsidyledger/internal/handler"
	"subsidyledger/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	govHandler *handler.GovHandler,
	producerHandler *handler.ProducerHandler,
	auditorHandler *handler.AuditorHandler,
	bankHandler *handler.BankHandler,
	explorerHandler *handler.ExplorerHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Auth
	api.POST("/auth/request-otp", authHandler.RequestOTP)
	api.POST("/auth/verify-otp", authHandler.VerifyOTP)
	api.POST("/auth/static-login", authHandler.Login)
	api.GET("/auth/me", AuthMiddleware(jwtSecret), authHandler.Me)

	// Public reads: program catalogue and the explorer
	api.GET("/gov/programs", govHandler.ListPrograms)
	api.GET("/gov/milestones", govHandler.ListMilestones)
	api.GET("/explorer/projects", explorerHandler.ListProjects)
	api.GET("/explorer/project/:id", explorerHandler.GetProject)

	// Government console
	gov := api.Group("/gov")
	gov.Use(AuthMiddleware(jwtSecret))
	{
		gov.POST("/programs", RequirePermission(rbac.PermissionCreateProgram), govHandler.CreateProgram)
		gov.POST("/milestones", RequirePermission(rbac.PermissionDefineMilestone), govHandler.DefineMilestone)
		gov.GET("/projects", RequirePermission(rbac.PermissionListProjects), govHandler.ListProjects)
		gov.POST("/projects/:id/approve", RequirePermission(rbac.PermissionApproveProject), govHandler.ApproveProject)
		gov.POST("/projects/:id/suspend", RequirePermission(rbac.PermissionSuspendProject), govHandler.SuspendProject)
		gov.POST("/projects/:id/revoke", RequirePermission(rbac.PermissionRevokeProject), govHandler.RevokeProject)
		gov.POST("/release", RequirePermission(rbac.PermissionTriggerRelease), govHandler.TriggerRelease)
		gov.POST("/clawback", RequirePermission(rbac.PermissionClawback), govHandler.Clawback)
	}

	// Producer dashboard
	producer := api.Group("/producer")
	producer.Use(AuthMiddleware(jwtSecret))
	{
		producer.POST("/apply", RequirePermission(rbac.PermissionApplyProject), producerHandler.Apply)
		producer.GET("/projects", RequirePermission(rbac.PermissionApplyProject), producerHandler.MyProjects)
	}

	// Auditor console
	auditor := api.Group("/auditor")
	auditor.Use(AuthMiddleware(jwtSecret))
	{
		auditor.POST("/attest", RequirePermission(rbac.PermissionSubmitAttestation), auditorHandler.Attest)
		auditor.GET("/projects", RequirePermission(rbac.PermissionListAssigned), auditorHandler.AssignedProjects)
	}

	// Bank console
	bank := api.Group("/bank")
	bank.Use(AuthMiddleware(jwtSecret))
	{
		bank.GET("/queue", RequirePermission(rbac.PermissionListQueued), bankHandler.Queue)
		bank.POST("/approve", RequirePermission(rbac.PermissionBankApprove), bankHandler.Approve)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(":" + port)
}

package invoice

import (
	"cep360-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	jwtSecret string,
	logger *zap.Logger,
	rdb *redis.Client,
) {
	invoices := r.Group("/invoices")
	invoices.Use(middleware.AuthMiddleware(jwtSecret))
	invoices.Use(middleware.ContextLogger(logger))
	{
		generate := []gin.HandlerFunc{
			middleware.RateLimitByUser(0.1, 2),
			middleware.RBACAuthorize(rbacService, "invoice", "generate"),
		}
		if rdb != nil {
			generate = append(generate, middleware.Idempotency(rdb))
		}
		invoices.POST("/generate", append(generate, handler.Generate)...)

		invoices.GET("", middleware.RBACAuthorize(rbacService, "invoice", "read_own"), handler.GetAll)
		invoices.GET("/agent", middleware.RBACAuthorize(rbacService, "invoice", "read_own"), handler.GetAgentInvoicesByMonth)
		invoices.GET("/pm/:pmId", middleware.RBACAuthorize(rbacService, "invoice", "read"), handler.GetByProgramManager)
		invoices.GET("/:id", middleware.RBACAuthorize(rbacService, "invoice", "read_own"), handler.GetByID)
		invoices.GET("/:id/document", middleware.RBACAuthorize(rbacService, "invoice", "read_own"), handler.DownloadDocument)

		invoices.PUT("/:id/publish",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "invoice", "update"),
			handler.UpdateAndPublish,
		)
		invoices.POST("/:id/document",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "invoice", "document"),
			handler.GenerateDocument,
		)
		invoices.POST("/:id/document/queue",
			middleware.RBACAuthorize(rbacService, "invoice", "document"),
			handler.RequestDocument,
		)
		invoices.DELETE("/:id", middleware.RBACAuthorize(rbacService, "invoice", "delete"), handler.Delete)
	}
}

package assignment

import (
	"cep360-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	jwtSecret string,
	logger *zap.Logger,
) {
	assignments := r.Group("/assignments")
	assignments.Use(middleware.AuthMiddleware(jwtSecret))
	assignments.Use(middleware.ContextLogger(logger))
	{
		assignments.GET("/pm/:pmId/agents",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "assignment", "read"),
			handler.GetAgentsByProgramManager,
		)
	}
}

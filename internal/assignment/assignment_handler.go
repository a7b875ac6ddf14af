package assignment

import (
	"net/http"

	assignmenterrors "cep360-payroll/internal/assignment/errors"
	"cep360-payroll/internal/employee"
	"cep360-payroll/internal/shared/apperror"
	"cep360-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("assignment.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("assignment request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetAgentsByProgramManager(c *gin.Context) {
	pmID := c.Param("pmId")

	if c.GetString("role") == employee.RoleProgramManager && c.GetString("user_id") != pmID {
		h.writeServiceError(c, assignmenterrors.ErrOtherProgramManager)
		return
	}

	resp, err := h.service.GetAgentsByProgramManager(c.Request.Context(), pmID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

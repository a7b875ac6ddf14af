package invoice

import (
	"net/http"
	"slices"

	"cep360-payroll/internal/employee"
	invoiceerrors "cep360-payroll/internal/invoice/errors"
	"cep360-payroll/internal/middleware"
	"cep360-payroll/internal/shared/apperror"
	"cep360-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("invoice.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("invoice.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("invoice request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", httpErr.Status),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Generate(c *gin.Context) {
	var req GenerateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.CompleteIdempotent(c, h.rdb, nil, false)
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.GenerateInvoices(c.Request.Context(), req)
	middleware.CompleteIdempotent(c, h.rdb, resp, err == nil)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateAndPublish(c *gin.Context) {
	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdateAndPublish(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeResult(c, resp, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GenerateDocument(c *gin.Context) {
	resp, err := h.service.GenerateDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeResult(c, resp, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// writeResult keeps the committed invoice in the body when only the
// document step failed.
func (h *Handler) writeResult(c *gin.Context, resp UpdateInvoiceResult, err error) {
	if isDocumentFailure(err) && resp.Invoice.ID != "" {
		h.logger.Warn("invoice saved without document",
			zap.String("invoice_id", resp.Invoice.ID),
			zap.Error(err),
		)
		response.PartialFailure(c, err, resp)
		return
	}
	h.writeServiceError(c, err)
}

func (h *Handler) RequestDocument(c *gin.Context) {
	if err := h.service.RequestDocument(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"queued": true}, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	var req GetInvoicesFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	if err := scopeFilter(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.list(c, req)
}

func (h *Handler) GetByProgramManager(c *gin.Context) {
	var req GetInvoicesFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	req.ProgramManagerID = c.Param("pmId")

	if err := scopeFilter(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.list(c, req)
}

func (h *Handler) list(c *gin.Context, req GetInvoicesFilterRequest) {
	resp, total, err := h.service.GetAll(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetAgentInvoicesByMonth(c *gin.Context) {
	var req AgentInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	if c.GetString("role") == employee.RoleAgent && req.AgentID != c.GetString("user_id") {
		h.writeServiceError(c, invoiceerrors.ErrOtherEmployee)
		return
	}

	resp, err := h.service.GetAgentInvoicesByMonth(c.Request.Context(), req.AgentID, req.Month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.readable(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadDocument(c *gin.Context) {
	resp, err := h.readable(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !resp.Document.Status || resp.Document.URL == nil || *resp.Document.URL == "" {
		h.writeServiceError(c, invoiceerrors.ErrDocumentNotGenerated)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, *resp.Document.URL)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

// readable loads an invoice under the same scope as scopeFilter: agents see
// their own invoices, program managers those of campaigns they manage.
func (h *Handler) readable(c *gin.Context) (InvoiceResponse, error) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		return InvoiceResponse{}, err
	}

	userID := c.GetString("user_id")
	switch c.GetString("role") {
	case employee.RoleAgent:
		if resp.EmployeeID != userID {
			return InvoiceResponse{}, invoiceerrors.ErrInvoiceNotFound
		}
	case employee.RoleProgramManager:
		if !slices.Contains(resp.ProgramManagerIDs, userID) {
			return InvoiceResponse{}, invoiceerrors.ErrInvoiceNotFound
		}
	}
	return resp, nil
}

// scopeFilter pins agents to their own invoices and program managers to
// the campaigns they manage.
func scopeFilter(c *gin.Context, req *GetInvoicesFilterRequest) error {
	userID := c.GetString("user_id")

	switch c.GetString("role") {
	case employee.RoleAgent:
		if req.EmployeeID != "" && req.EmployeeID != userID {
			return invoiceerrors.ErrOtherEmployee
		}
		req.EmployeeID = userID
	case employee.RoleProgramManager:
		if req.ProgramManagerID != "" && req.ProgramManagerID != userID {
			return invoiceerrors.ErrOtherProgramManager
		}
		req.ProgramManagerID = userID
	}
	return nil
}


package invoiceerrors

import (
	"net/http"

	"cep360-payroll/internal/shared/apperror"
)

var (
	ErrInvalidInvoiceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid invoice id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidCampaignID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid campaign id",
		http.StatusBadRequest,
	)
	ErrInvalidProgramManagerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid program manager id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"salary period start and end dates are required, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start date must be before or equal to end date",
		http.StatusBadRequest,
	)
	ErrDatesOutsidePeriod = apperror.New(
		apperror.CodeInvalidInput,
		"dates must fall inside the invoice salary period",
		http.StatusBadRequest,
	)
	ErrNegativeAdjustment = apperror.New(
		apperror.CodeInvalidInput,
		"incentive, arrears and extra pay cannot be negative",
		http.StatusBadRequest,
	)
	ErrInvalidRate = apperror.New(
		apperror.CodeInvalidInput,
		"compensation rate must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidDayCounts = apperror.New(
		apperror.CodeInvalidInput,
		"days worked and days absent exceed the days between start and end date",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"invalid month, expected a label such as \"June 2024\"",
		http.StatusBadRequest,
	)
	ErrInvoiceNotFound = apperror.New(
		apperror.CodeNotFound,
		"invoice not found",
		http.StatusNotFound,
	)
	ErrDuplicateInvoice = apperror.New(
		apperror.CodeConflict,
		"invoice already exists for this employee, campaign and month",
		http.StatusConflict,
	)
	ErrInvoiceChanged = apperror.New(
		apperror.CodeConflict,
		"invoice changed while its document was being generated, retry generation",
		http.StatusConflict,
	)
	ErrDocumentNotGenerated = apperror.New(
		apperror.CodeNotFound,
		"invoice document is not generated yet",
		http.StatusNotFound,
	)
	ErrDeleteWithDocument = apperror.New(
		apperror.CodeInvalidState,
		"invoice with a generated document cannot be deleted",
		http.StatusBadRequest,
	)
	ErrOtherEmployee = apperror.New(
		apperror.CodeForbidden,
		"agents can only read their own invoices",
		http.StatusForbidden,
	)
	ErrOtherProgramManager = apperror.New(
		apperror.CodeForbidden,
		"program managers can only read their own invoices",
		http.StatusForbidden,
	)
	ErrDocumentRenderFailed = apperror.New(
		apperror.CodeDocumentFailed,
		"invoice saved but the document could not be rendered, retry generation",
		http.StatusBadGateway,
	)
	ErrDocumentPublishFailed = apperror.New(
		apperror.CodeDocumentFailed,
		"invoice saved but the document could not be published, retry generation",
		http.StatusBadGateway,
	)
	ErrDocumentQueueUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"document queue is not configured",
		http.StatusServiceUnavailable,
	)
)

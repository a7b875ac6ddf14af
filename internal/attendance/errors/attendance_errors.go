package attendanceerrors

import (
	"net/http"

	"cep360-payroll/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"From date must not be after to date",
		http.StatusBadRequest,
	)
	ErrRangeTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"Date range must not exceed 366 days",
		http.StatusBadRequest,
	)
	ErrOtherEmployee = apperror.New(
		apperror.CodeForbidden,
		"Agents can only read their own attendance",
		http.StatusForbidden,
	)
)

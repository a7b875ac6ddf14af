package assignmenterrors

import (
	"net/http"

	"cep360-payroll/internal/shared/apperror"
)

var (
	ErrInvalidProgramManagerID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid program manager ID",
		http.StatusBadRequest,
	)
	ErrOtherProgramManager = apperror.New(
		apperror.CodeForbidden,
		"Program managers can only list their own agents",
		http.StatusForbidden,
	)
)

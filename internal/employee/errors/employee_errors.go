package employeeerrors

import (
	"net/http"

	"cep360-payroll/internal/shared/apperror"
)

var ErrEmployeeNotFound = apperror.New(
	apperror.CodeNotFound,
	"Agent not found",
	http.StatusNotFound,
)

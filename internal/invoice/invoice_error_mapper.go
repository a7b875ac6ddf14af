package invoice

import (
	"errors"
	"strings"

	invoiceerrors "cep360-payroll/internal/invoice/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invoiceerrors.ErrInvoiceNotFound
	}

	if isUniqueInvoiceViolation(err) {
		return invoiceerrors.ErrDuplicateInvoice
	}

	return err
}

func isUniqueInvoiceViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == UniqueConstraint
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") && strings.Contains(msg, UniqueConstraint)
}

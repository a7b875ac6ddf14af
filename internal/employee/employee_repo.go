package employee

import (
	"context"
	"errors"
	"fmt"

	employeeerrors "cep360-payroll/internal/employee/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Employee, error) {
	out := make(map[uuid.UUID]Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []Employee
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %d employees: %w", len(ids), err)
	}
	for _, e := range rows {
		out[e.ID] = e
	}
	return out, nil
}

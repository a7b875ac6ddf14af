package attendance

import (
	"context"
	"time"

	"cep360-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	Append(ctx context.Context, e *AttendanceEvent) error
	// FindLoggedDates returns the distinct dates in [from, to] with at least
	// one event for the employee, ascending.
	FindLoggedDates(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]time.Time, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, e *AttendanceEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindLoggedDates(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&AttendanceEvent{}).
		Distinct("attendance_date").
		Where("employee_id = ?", employeeID).
		Where("attendance_date BETWEEN ? AND ?", dateutil.Format(from), dateutil.Format(to)).
		Order("attendance_date ASC").
		Pluck("attendance_date", &dates).Error
	return dates, err
}

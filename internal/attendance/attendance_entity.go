package attendance

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceEvent is one login recorded for an employee. The log is
// append-only; several events on the same date count once.
type AttendanceEvent struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID     uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index:idx_attendance_employee_date,priority:1"`
	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;index:idx_attendance_employee_date,priority:2"`
	LoggedAt       time.Time `gorm:"column:logged_at;type:timestamptz;not null"`
	Source         string    `gorm:"column:source;type:varchar(30);not null;default:LOGIN"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (AttendanceEvent) TableName() string {
	return "attendance_events"
}

package employee

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin           = "admin"
	RoleProgramManager  = "program_manager"
	RoleResourceManager = "resource_manager"
	RoleAgent           = "agent"
)

type Employee struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name;not null"`
	Email    string    `gorm:"column:email;uniqueIndex"`
	Role     string    `gorm:"column:role;type:varchar(30);not null"`
	// MonthlyRate is normalized to a 30-day month.
	MonthlyRate int64     `gorm:"column:monthly_rate;not null;default:0"`
	Status      string    `gorm:"column:status;type:varchar(20)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

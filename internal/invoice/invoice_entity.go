package invoice

import (
	"time"

	"cep360-payroll/internal/campaign"
	"cep360-payroll/internal/employee"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "DRAFT"
	StatusEdited    = "EDITED"
	StatusGenerated = "GENERATED"
)

const UniqueConstraint = "uq_invoice_employee_campaign_month"

// Document is the rendered artifact of an invoice. Status stays false until
// an upload has succeeded and its link is recorded.
type Document struct {
	Status      bool       `gorm:"column:status;not null"`
	URL         *string    `gorm:"column:url"`
	Key         *string    `gorm:"column:key"`
	GeneratedAt *time.Time `gorm:"column:generated_at"`
	GeneratedBy *uuid.UUID `gorm:"column:generated_by;type:uuid"`
}

type Invoice struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"column:employee_id;type:uuid;not null"`
	CampaignID  uuid.UUID `gorm:"column:campaign_id;type:uuid;not null"`
	MonthLabel  string    `gorm:"column:month_label;not null"`
	PeriodStart time.Time `gorm:"column:period_start;type:date;not null"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date;not null"`
	StartDate   time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time `gorm:"column:end_date;type:date;not null"`

	DaysWorked              int `gorm:"column:days_worked;not null"`
	DaysAbsent              int `gorm:"column:days_absent;not null"`
	TotalDaysInWindow       int `gorm:"column:total_days_in_window;not null"`
	TotalDaysGenerated      int `gorm:"column:total_days_generated;not null"`
	DaysAvailableToGenerate int `gorm:"column:days_available_to_generate;not null"`

	Incentive        int64 `gorm:"column:incentive;not null"`
	Arrears          int64 `gorm:"column:arrears;not null"`
	ExtraPay         int64 `gorm:"column:extra_pay;not null"`
	CompensationRate int64 `gorm:"column:compensation_rate;not null"`
	ComputedSalary   int64 `gorm:"column:computed_salary;not null"`

	Status      string     `gorm:"column:status;not null"`
	GeneratedBy *uuid.UUID `gorm:"column:generated_by;type:uuid"`
	ModifiedBy  *uuid.UUID `gorm:"column:modified_by;type:uuid"`
	Document    Document   `gorm:"embedded;embeddedPrefix:document_"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Employee *employee.Employee `gorm:"foreignKey:EmployeeID"`
	Campaign *campaign.Campaign `gorm:"foreignKey:CampaignID"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// Key is the business identity enforced by UniqueConstraint.
type Key struct {
	EmployeeID uuid.UUID
	CampaignID uuid.UUID
	MonthLabel string
}

func (i Invoice) Key() Key {
	return Key{EmployeeID: i.EmployeeID, CampaignID: i.CampaignID, MonthLabel: i.MonthLabel}
}

// Filter narrows list queries; nil fields are ignored.
type Filter struct {
	EmployeeID       *uuid.UUID
	CampaignID       *uuid.UUID
	ProgramManagerID *uuid.UUID
	MonthLabel       *string
	Status           *string
	Limit            int
	Offset           int
}

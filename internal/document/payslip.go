package document

import (
	"time"

	"github.com/google/uuid"
)

// Payslip is everything printed on one invoice document. Amounts are whole
// currency units.
type Payslip struct {
	InvoiceID     uuid.UUID
	EmployeeID    uuid.UUID
	EmployeeName  string
	EmployeeEmail string
	CampaignName  string
	MonthLabel    string
	StartDate     time.Time
	EndDate       time.Time

	CompensationRate int64
	Gross            int64
	Incentive        int64
	Arrears          int64
	ExtraPay         int64
	Total            int64

	DaysWorked              int
	DaysAbsent              int
	TotalDaysInWindow       int
	DaysAvailableToGenerate int

	GeneratedAt time.Time
	Signatory   string
}

package invoice

type GenerateInvoicesRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// GenerateInvoicesResult accounts for every assignment considered:
// Attempted == Inserted + Duplicates + Skipped + NoOverlap + Failed.
type GenerateInvoicesResult struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Attempted   int    `json:"attempted"`
	Inserted    int    `json:"inserted"`
	Duplicates  int    `json:"duplicates"`
	Skipped     int    `json:"skipped"`
	NoOverlap   int    `json:"no_overlap"`
	Failed      int    `json:"failed"`
}

type UpdateInvoiceRequest struct {
	Incentive        int64  `json:"incentive"`
	Arrears          int64  `json:"arrears"`
	ExtraPay         int64  `json:"extra_pay"`
	DaysWorked       *int   `json:"days_worked" binding:"required"`
	DaysAbsent       int    `json:"days_absent"`
	StartDate        string `json:"start_date" binding:"required"`
	EndDate          string `json:"end_date" binding:"required"`
	CompensationRate *int64 `json:"compensation_rate" binding:"required"`
}

type UpdateInvoiceResult struct {
	Invoice       InvoiceResponse `json:"invoice"`
	ComputedTotal int64           `json:"computed_total"`
	DocumentURL   *string         `json:"document_url"`
}

type GetInvoicesFilterRequest struct {
	EmployeeID       string `form:"employee_id"`
	CampaignID       string `form:"campaign_id"`
	ProgramManagerID string `form:"program_manager_id"`
	Month            string `form:"month"`
	Status           string `form:"status"`
	Page             int    `form:"page"`
	PageSize         int    `form:"page_size"`
}

type AgentInvoicesRequest struct {
	AgentID string `form:"agent_id" binding:"required"`
	Month   string `form:"month" binding:"required"`
}

type DocumentResponse struct {
	Status      bool    `json:"status"`
	URL         *string `json:"url,omitempty"`
	GeneratedAt *string `json:"generated_at,omitempty"`
	GeneratedBy *string `json:"generated_by,omitempty"`
}

type InvoiceResponse struct {
	ID                      string           `json:"id"`
	EmployeeID              string           `json:"employee_id"`
	EmployeeName            string           `json:"employee_name,omitempty"`
	EmployeeEmail           string           `json:"employee_email,omitempty"`
	CampaignID              string           `json:"campaign_id"`
	CampaignName            string           `json:"campaign_name,omitempty"`
	ProgramManagerIDs       []string         `json:"program_manager_ids,omitempty"`
	MonthLabel              string           `json:"month"`
	PeriodStart             string           `json:"period_start"`
	PeriodEnd               string           `json:"period_end"`
	StartDate               string           `json:"start_date"`
	EndDate                 string           `json:"end_date"`
	DaysWorked              int              `json:"days_worked"`
	DaysAbsent              int              `json:"days_absent"`
	TotalDaysInWindow       int              `json:"total_days_in_window"`
	TotalDaysGenerated      int              `json:"total_days_generated"`
	DaysAvailableToGenerate int              `json:"days_available_to_generate"`
	Incentive               int64            `json:"incentive"`
	Arrears                 int64            `json:"arrears"`
	ExtraPay                int64            `json:"extra_pay"`
	CompensationRate        int64            `json:"compensation_rate"`
	ComputedSalary          int64            `json:"computed_salary"`
	Status                  string           `json:"status"`
	GeneratedBy             *string          `json:"generated_by,omitempty"`
	ModifiedBy              *string          `json:"modified_by,omitempty"`
	Document                DocumentResponse `json:"document"`
	CreatedAt               string           `json:"created_at"`
	UpdatedAt               string           `json:"updated_at"`
}

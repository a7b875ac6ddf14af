package attendance

type SummaryRequest struct {
	EmployeeID string `form:"employee_id" binding:"required"`
	From       string `form:"from" binding:"required"`
	To         string `form:"to" binding:"required"`
}

type SummaryResponse struct {
	EmployeeID   string   `json:"employee_id"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	TotalDays    int      `json:"total_days"`
	PresentDays  int      `json:"present_days"`
	AbsentDays   int      `json:"absent_days"`
	PresentDates []string `json:"present_dates"`
	AbsentDates  []string `json:"absent_dates"`
}

type EventResponse struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	AttendanceDate string `json:"attendance_date"`
	LoggedAt       string `json:"logged_at"`
	Source         string `json:"source"`
}

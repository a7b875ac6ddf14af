package assignment

type AgentResponse struct {
	AgentID           string  `json:"agent_id"`
	FullName          string  `json:"full_name"`
	Email             string  `json:"email"`
	Role              string  `json:"role"`
	MonthlyRate       int64   `json:"monthly_rate"`
	Status            string  `json:"status,omitempty"`
	CampaignID        string  `json:"campaign_id"`
	CampaignName      string  `json:"campaign_name"`
	CampaignStartDate string  `json:"campaign_start_date"`
	CampaignEndDate   *string `json:"campaign_end_date,omitempty"`
	AssignedDate      *string `json:"assigned_date,omitempty"`
	ReleasedDate      *string `json:"released_date,omitempty"`
}

package assignment

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is one agent's tenure on one campaign. Released rows are kept
// because a released agent can still be owed pay for the period.
type Assignment struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	AgentID      uuid.UUID  `gorm:"column:agent_id;type:uuid;not null;index"`
	CampaignID   uuid.UUID  `gorm:"column:campaign_id;type:uuid;not null;index"`
	AssignedDate *time.Time `gorm:"column:assigned_date;type:date"`
	ReleasedDate *time.Time `gorm:"column:released_date;type:date"`
	IsAssigned   bool       `gorm:"column:is_assigned;not null;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (Assignment) TableName() string {
	return "agent_assignments"
}

// AgentRow is the joined projection used by the program manager listing.
type AgentRow struct {
	AgentID           uuid.UUID
	FullName          string
	Email             string
	Role              string
	MonthlyRate       int64
	Status            string
	CampaignID        uuid.UUID
	CampaignName      string
	CampaignStartDate time.Time
	CampaignEndDate   *time.Time
	AssignedDate      *time.Time
	ReleasedDate      *time.Time
}

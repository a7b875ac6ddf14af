package campaign

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCompleted = "completed"
)

// Campaign is owned by the campaign directory and read-only here.
type Campaign struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Name            string                   `gorm:"column:name;not null"`
	StartDate       time.Time                `gorm:"column:start_date;type:date;not null"`
	EndDate         *time.Time               `gorm:"column:end_date;type:date"`
	Status          string                   `gorm:"column:status;type:varchar(20);not null;index"`
	ProgramManagers []CampaignProgramManager `gorm:"foreignKey:CampaignID;references:ID"`
	CreatedAt       time.Time                `gorm:"column:created_at"`
	UpdatedAt       time.Time                `gorm:"column:updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

type CampaignProgramManager struct {
	CampaignID uuid.UUID `gorm:"column:campaign_id;type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
}

func (CampaignProgramManager) TableName() string {
	return "campaign_program_managers"
}

func (c Campaign) ProgramManagerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.ProgramManagers))
	for _, pm := range c.ProgramManagers {
		ids = append(ids, pm.UserID)
	}
	return ids
}

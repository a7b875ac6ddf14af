package assignment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=assignment_repo.go -destination=mock/assignment_repo_mock.go -package=mock
type Repository interface {
	FindByCampaignIDs(ctx context.Context, campaignIDs []uuid.UUID) ([]Assignment, error)
	FindAgentsByCampaignIDs(ctx context.Context, campaignIDs []uuid.UUID) ([]AgentRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByCampaignIDs(ctx context.Context, campaignIDs []uuid.UUID) ([]Assignment, error) {
	if len(campaignIDs) == 0 {
		return []Assignment{}, nil
	}

	var rows []Assignment
	err := r.db.WithContext(ctx).
		Where("campaign_id IN ?", campaignIDs).
		Order("agent_id ASC, campaign_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAgentsByCampaignIDs(ctx context.Context, campaignIDs []uuid.UUID) ([]AgentRow, error) {
	if len(campaignIDs) == 0 {
		return []AgentRow{}, nil
	}

	var rows []AgentRow
	err := r.db.WithContext(ctx).
		Table("agent_assignments AS a").
		Select(`
			a.agent_id,
			e.full_name,
			e.email,
			e.role,
			e.monthly_rate,
			e.status,
			a.campaign_id,
			c.name AS campaign_name,
			c.start_date AS campaign_start_date,
			c.end_date AS campaign_end_date,
			a.assigned_date,
			a.released_date`).
		Joins("JOIN employees e ON e.id = a.agent_id").
		Joins("JOIN campaigns c ON c.id = a.campaign_id").
		Where("a.campaign_id IN ?", campaignIDs).
		Order("c.name ASC, e.full_name ASC").
		Scan(&rows).Error
	return rows, err
}

package campaign

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=campaign_repo.go -destination=mock/campaign_repo_mock.go -package=mock
type Repository interface {
	FindActive(ctx context.Context) ([]Campaign, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Campaign, error)
	FindIDsByProgramManager(ctx context.Context, pmID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActive(ctx context.Context) ([]Campaign, error) {
	var rows []Campaign
	err := r.db.WithContext(ctx).
		Preload("ProgramManagers").
		Where("status = ?", StatusActive).
		Order("start_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Campaign, error) {
	if len(ids) == 0 {
		return []Campaign{}, nil
	}

	var rows []Campaign
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindIDsByProgramManager(ctx context.Context, pmID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&CampaignProgramManager{}).
		Where("user_id = ?", pmID).
		Pluck("campaign_id", &ids).Error
	return ids, err
}

package assignment

import (
	"context"
	"encoding/json"
	"time"

	assignmenterrors "cep360-payroll/internal/assignment/errors"
	"cep360-payroll/internal/campaign"
	"cep360-payroll/internal/shared/contextutil"
	"cep360-payroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	AgentsByPMKeyPrefix = "assignments:agents:pm:"
	agentsByPMTTL       = 10 * time.Minute
)

func GetAgentsByPMKey(pmID string) string {
	return AgentsByPMKeyPrefix + pmID
}

//go:generate mockgen -source=assignment_service.go -destination=mock/assignment_service_mock.go -package=mock
type Service interface {
	GetAgentsByProgramManager(ctx context.Context, pmID string) ([]AgentResponse, error)
}

type service struct {
	repo      Repository
	campaigns campaign.Repository
	rdb       *redis.Client
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(repo Repository, campaigns campaign.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("assignment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.service")
	}
	return &service{
		repo:      repo,
		campaigns: campaigns,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) GetAgentsByProgramManager(ctx context.Context, pmID string) ([]AgentResponse, error) {
	id, err := uuid.Parse(pmID)
	if err != nil {
		return nil, assignmenterrors.ErrInvalidProgramManagerID
	}

	log := contextutil.GetLogger(ctx, s.logger)
	cacheKey := GetAgentsByPMKey(id.String())

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []AgentResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		campaignIDs, err := s.campaigns.FindIDsByProgramManager(ctx, id)
		if err != nil {
			return nil, err
		}

		rows, err := s.repo.FindAgentsByCampaignIDs(ctx, campaignIDs)
		if err != nil {
			return nil, err
		}

		resp := mapToAgentResponses(rows)

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, agentsByPMTTL).Err(); err != nil {
					log.Warn("cache agents by pm failed", zap.String("pm_id", pmID), zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		log.Error("get agents by program manager failed", zap.String("pm_id", pmID), zap.Error(err))
		return nil, err
	}

	return v.([]AgentResponse), nil
}

func mapToAgentResponses(rows []AgentRow) []AgentResponse {
	resp := make([]AgentResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, AgentResponse{
			AgentID:           r.AgentID.String(),
			FullName:          r.FullName,
			Email:             r.Email,
			Role:              r.Role,
			MonthlyRate:       r.MonthlyRate,
			Status:            r.Status,
			CampaignID:        r.CampaignID.String(),
			CampaignName:      r.CampaignName,
			CampaignStartDate: dateutil.Format(r.CampaignStartDate),
			CampaignEndDate:   formatDatePtr(r.CampaignEndDate),
			AssignedDate:      formatDatePtr(r.AssignedDate),
			ReleasedDate:      formatDatePtr(r.ReleasedDate),
		})
	}
	return resp
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := dateutil.Format(*t)
	return &s
}

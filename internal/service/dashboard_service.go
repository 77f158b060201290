package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/repository"
)

const dashboardCacheKey = "dashboard:enquiries"

// DashboardService produces aggregated pipeline metrics.
type DashboardService interface {
	GetPipelineDashboard(ctx context.Context) (dto.PipelineDashboardResponse, error)
}

type dashboardService struct {
	enquiries repository.EnquiryRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator. The cache client may
// be nil; every request then computes the stats directly.
func NewDashboardService(enquiries repository.EnquiryRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		enquiries: enquiries,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetPipelineDashboard(ctx context.Context) (dto.PipelineDashboardResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var response dto.PipelineDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	byStatus, err := s.enquiries.CountByStatus(ctx)
	if err != nil {
		return dto.PipelineDashboardResponse{}, err
	}

	bySource, err := s.enquiries.CountBySource(ctx)
	if err != nil {
		return dto.PipelineDashboardResponse{}, err
	}

	outstanding, err := s.enquiries.SumOutstandingBalance(ctx)
	if err != nil {
		return dto.PipelineDashboardResponse{}, err
	}

	response := dto.PipelineDashboardResponse{
		ByStatus:           map[string]int64{},
		BySource:           map[string]int64{},
		OutstandingBalance: outstanding,
	}
	for _, entry := range byStatus {
		response.ByStatus[entry.Label] = entry.Count
		response.TotalEnquiries += entry.Count
	}
	for _, entry := range bySource {
		response.BySource[entry.Label] = entry.Count
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
)

const (
	dashboardStatsKey  = "dashboard:stats"
	dashboardRecentKey = "dashboard:recent_cases"
)

// DashboardService aggregates counters for the office dashboard. Results are
// cached in Redis for a short TTL; an unreachable Redis degrades to uncached
// reads instead of failing the request.
type DashboardService struct {
	store  repository.Store
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService constructs the service. cache may be nil.
func NewDashboardService(store repository.Store, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, cache: cache, ttl: ttl, logger: logger}
}

// StatusCount is a per-status slice of the active case count.
type StatusCount struct {
	StatusID int    `json:"statusId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// DashboardStats is the stats endpoint payload.
type DashboardStats struct {
	TotalCases    int           `json:"totalCases"`
	CasesByStatus []StatusCount `json:"casesByStatus"`
	TotalClients  int           `json:"totalClients"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}

// RecentCase is a slim case row for the dashboard listing.
type RecentCase struct {
	ID          string    `json:"id"`
	CaseNumber  string    `json:"caseNumber"`
	ClientName  string    `json:"clientName"`
	StatusName  string    `json:"statusName"`
	StatusColor string    `json:"statusColor"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats returns dashboard counters, from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	if s.cacheGet(ctx, dashboardStatsKey, &cached) {
		return &cached, nil
	}

	total, err := s.store.Cases().CountActive(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	byStatus, err := s.store.Cases().CountByStatus(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	statuses, err := s.store.Statuses().ListActive(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	_, clientTotal, err := s.store.Clients().List(ctx, repository.ClientFilter{Limit: 1})
	if err != nil {
		return nil, persistenceError(err)
	}

	stats := &DashboardStats{
		TotalCases:    total,
		CasesByStatus: make([]StatusCount, 0, len(statuses)),
		TotalClients:  clientTotal,
		GeneratedAt:   time.Now(),
	}
	for _, status := range statuses {
		stats.CasesByStatus = append(stats.CasesByStatus, StatusCount{
			StatusID: status.ID,
			Code:     string(status.Code),
			Name:     status.Name,
			Color:    status.Color,
			Count:    byStatus[status.ID],
		})
	}

	s.cacheSet(ctx, dashboardStatsKey, stats)
	return stats, nil
}

// RecentCases returns the ten newest cases, from cache when fresh.
func (s *DashboardService) RecentCases(ctx context.Context) ([]RecentCase, error) {
	var cached []RecentCase
	if s.cacheGet(ctx, dashboardRecentKey, &cached) {
		return cached, nil
	}

	cases, err := s.store.Cases().ListRecent(ctx, 10)
	if err != nil {
		return nil, persistenceError(err)
	}
	statuses, err := s.statusesByID(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]RecentCase, 0, len(cases))
	for _, c := range cases {
		row := RecentCase{
			ID:         c.ID,
			CaseNumber: c.CaseNumber,
			CreatedAt:  c.CreatedAt,
		}
		if client, err := s.store.Clients().GetByID(ctx, c.ClientID); err == nil {
			row.ClientName = client.FullName()
		}
		if status, ok := statuses[c.StatusID]; ok {
			row.StatusName = status.Name
			row.StatusColor = status.Color
		}
		result = append(result, row)
	}

	s.cacheSet(ctx, dashboardRecentKey, result)
	return result, nil
}

// Invalidate drops the cached dashboard entries, used after case mutations.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardStatsKey, dashboardRecentKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) statusesByID(ctx context.Context) (map[int]domain.CaseStatus, error) {
	statuses, err := s.store.Statuses().ListActive(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	byID := make(map[int]domain.CaseStatus, len(statuses))
	for _, status := range statuses {
		byID[status.ID] = status
	}
	return byID, nil
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn("dashboard cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

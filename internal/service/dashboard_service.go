package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bssic/school-portal-api/internal/models"
	appErrors "github.com/bssic/school-portal-api/pkg/errors"
)

const dashboardStatsCacheKey = "dashboard:stats"

type applicationCounter interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.ApplicationStatus) (int, error)
}

type resultCounter interface {
	Count(ctx context.Context) (int, error)
}

type contactCounter interface {
	Count(ctx context.Context) (int, error)
}

// DashboardService aggregates the admin dashboard counters.
type DashboardService struct {
	applications applicationCounter
	results      resultCounter
	contacts     contactCounter
	cache        *CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewDashboardService creates an instance of DashboardService.
func NewDashboardService(applications applicationCounter, results resultCounter, contacts contactCounter, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		applications: applications,
		results:      results,
		contacts:     contacts,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Stats returns the dashboard counters, served from cache when fresh.
// The four counts are fetched concurrently; any single failure fails
// the whole aggregation.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil && s.cache.Enabled() {
		var cached models.DashboardStats
		if hit, err := s.cache.Get(ctx, dashboardStatsCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.applications.Count(gctx)
		stats.TotalApplications = n
		return err
	})
	g.Go(func() error {
		n, err := s.applications.CountByStatus(gctx, models.StatusPending)
		stats.PendingApplications = n
		return err
	})
	g.Go(func() error {
		n, err := s.results.Count(gctx)
		stats.TotalResults = n
		return err
	})
	g.Go(func() error {
		n, err := s.contacts.Count(gctx)
		stats.ContactSubmissions = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate dashboard stats")
	}

	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, dashboardStatsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}

	return stats, nil
}

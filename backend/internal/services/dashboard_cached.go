package services

import (
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/cache"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// CachedDashboardService decorates DashboardService with the multi-level
// cache. Authorization always runs before the cache is consulted, so a
// cached summary can never leak to a non-member.
type CachedDashboardService struct {
	inner DashboardService
	authz AuthorizationService
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedDashboardService(inner DashboardService, authz AuthorizationService, c cache.Cache) *CachedDashboardService {
	return &CachedDashboardService{
		inner: inner,
		authz: authz,
		cache: c,
		ttl:   30 * time.Second,
	}
}

func (s *CachedDashboardService) ProjectSummary(db *gorm.DB, actorID, projectID uuid.UUID) (*ProjectSummary, error) {
	if _, err := s.authz.Authorize(db, actorID, projectID, ActionView); err != nil {
		return nil, err
	}

	key := cache.ProjectSummaryKey(projectID)

	var summary ProjectSummary
	if err := s.cache.Get(key, &summary); err == nil {
		return &summary, nil
	}

	fresh, err := s.inner.ProjectSummary(db, actorID, projectID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(key, fresh, s.ttl)
	return fresh, nil
}

func (s *CachedDashboardService) UserSummary(db *gorm.DB, actorID uuid.UUID) (*UserSummary, error) {
	key := cache.UserSummaryKey(actorID)

	var summary UserSummary
	if err := s.cache.Get(key, &summary); err == nil {
		return &summary, nil
	}

	fresh, err := s.inner.UserSummary(db, actorID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(key, fresh, s.ttl)
	return fresh, nil
}

// InvalidateProject drops the cached summary after a task or membership
// mutation touches the project.
func (s *CachedDashboardService) InvalidateProject(projectID uuid.UUID) {
	_ = s.cache.Delete(cache.ProjectSummaryKey(projectID))
}

func (s *CachedDashboardService) InvalidateUser(userID uuid.UUID) {
	_ = s.cache.Delete(cache.UserSummaryKey(userID))
}

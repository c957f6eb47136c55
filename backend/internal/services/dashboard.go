package services

import (
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ProjectSummary struct {
	ProjectID      uuid.UUID `json:"project_id"`
	MemberCount    int64     `json:"member_count"`
	TaskCount      int64     `json:"task_count"`
	CompletedCount int64     `json:"completed_count"`
}

type UserSummary struct {
	UserID         uuid.UUID `json:"user_id"`
	TotalTasks     int64     `json:"total_tasks"`
	CompletedTasks int64     `json:"completed_tasks"`
	OverdueTasks   int64     `json:"overdue_tasks"`
}

// DashboardService recomputes every count from the live rows on each
// read; nothing is denormalized, so the numbers cannot drift from the
// mutators' state.
type DashboardService interface {
	ProjectSummary(db *gorm.DB, actorID, projectID uuid.UUID) (*ProjectSummary, error)
	UserSummary(db *gorm.DB, actorID uuid.UUID) (*UserSummary, error)
}

type DashboardServiceImpl struct {
	authz AuthorizationService
}

func NewDashboardService(authz AuthorizationService) *DashboardServiceImpl {
	return &DashboardServiceImpl{authz: authz}
}

func (s *DashboardServiceImpl) ProjectSummary(db *gorm.DB, actorID, projectID uuid.UUID) (*ProjectSummary, error) {
	if _, err := s.authz.Authorize(db, actorID, projectID, ActionView); err != nil {
		return nil, err
	}
	return s.ComputeProjectSummary(db, projectID)
}

// ComputeProjectSummary skips the membership check. Only the background
// cache warmer should call it; request paths go through ProjectSummary.
func (s *DashboardServiceImpl) ComputeProjectSummary(db *gorm.DB, projectID uuid.UUID) (*ProjectSummary, error) {
	summary := &ProjectSummary{ProjectID: projectID}

	if err := db.Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Count(&summary.MemberCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&summary.TaskCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, models.StatusCompleted).
		Count(&summary.CompletedCount).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *DashboardServiceImpl) UserSummary(db *gorm.DB, actorID uuid.UUID) (*UserSummary, error) {
	summary := &UserSummary{UserID: actorID}

	if err := db.Model(&models.Task{}).
		Where("assignee_id = ?", actorID).
		Count(&summary.TotalTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).
		Where("assignee_id = ? AND status = ?", actorID, models.StatusCompleted).
		Count(&summary.CompletedTasks).Error; err != nil {
		return nil, err
	}
	// Tasks with no due date are never overdue.
	if err := db.Model(&models.Task{}).
		Where("assignee_id = ? AND due_date IS NOT NULL AND due_date < ? AND status <> ?",
			actorID, time.Now(), models.StatusCompleted).
		Count(&summary.OverdueTasks).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
